package repository

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"sesoko-server/internal/modules/tank/types"
)

// ReadingRepository loads the daily reading table of a tank from the remote CSV source.
type ReadingRepository interface {
	URLFor(day time.Time, tank string) string
	GetTable(ctx context.Context, day time.Time, tank string) (*types.Table, error)
}

type repositoryImpl struct {
	baseURL string
	fetcher Fetcher
	loc     *time.Location
}

func NewRepository(baseURL string, fetcher Fetcher, loc *time.Location) ReadingRepository {
	return &repositoryImpl{baseURL: baseURL, fetcher: fetcher, loc: loc}
}

func (r *repositoryImpl) URLFor(day time.Time, tank string) string {
	return ResolveURL(r.baseURL, day, tank)
}

func (r *repositoryImpl) GetTable(ctx context.Context, day time.Time, tank string) (*types.Table, error) {
	url := r.URLFor(day, tank)
	body, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	tbl, err := ParseTable(bytes.NewReader(body), TimeColumn, r.loc)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", FileName(day), err)
	}
	return tbl, nil
}
