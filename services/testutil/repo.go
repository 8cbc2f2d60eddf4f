package testutil

import (
	"context"

	"promo-eventserver/pkg/db/option"
	"promo-eventserver/pkg/repository"

	"gorm.io/gorm"
)

// LoseFirstReads wraps a repository so its next n FindOne calls observe no
// row. It replays the window where two concurrent first-touch transactions
// both read nothing and race to insert the same row, which a single sqlite
// connection otherwise serializes away.
func LoseFirstReads[T any](repo repository.Repository[T], n int) repository.Repository[T] {
	misses := n
	return &missingReads[T]{Repository: repo, misses: &misses}
}

type missingReads[T any] struct {
	repository.Repository[T]
	misses *int
}

func (s *missingReads[T]) WithTrx(tx *gorm.DB) repository.Repository[T] {
	return &missingReads[T]{Repository: s.Repository.WithTrx(tx), misses: s.misses}
}

func (s *missingReads[T]) FindOne(ctx context.Context, query *T, opts ...option.QueryOption) (*T, error) {
	if *s.misses > 0 {
		*s.misses--
		return nil, nil
	}
	return s.Repository.FindOne(ctx, query, opts...)
}
