package app

import (
	"context"
	"errors"
	"testing"

	"github.com/pickmyelective/electives/internal/domain"
	"github.com/pickmyelective/electives/internal/domain/vectorindex"
)

type stubDescriber struct {
	coll vectorindex.Collection
	err  error
}

func (s stubDescriber) Describe(_ context.Context, name string) (vectorindex.Collection, error) {
	if s.err != nil {
		return vectorindex.Collection{}, s.err
	}
	c := s.coll
	c.Name = name
	return c, nil
}

func TestVerifyServing(t *testing.T) {
	tests := []struct {
		name    string
		d       stubDescriber
		wantErr error
	}{
		{
			name: "ok",
			d:    stubDescriber{coll: vectorindex.Collection{Exists: true, Dimensions: 3072, Count: 10}},
		},
		{
			name: "unknown dimensions accepted",
			d:    stubDescriber{coll: vectorindex.Collection{Exists: true}},
		},
		{
			name:    "missing",
			d:       stubDescriber{coll: vectorindex.Collection{}},
			wantErr: domain.ErrIndexUnavailable,
		},
		{
			name:    "dimension mismatch",
			d:       stubDescriber{coll: vectorindex.Collection{Exists: true, Dimensions: 768}},
			wantErr: domain.ErrVectorDimMismatch,
		},
		{
			name:    "describe fails",
			d:       stubDescriber{err: errors.New("connection refused")},
			wantErr: domain.ErrIndexUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := VerifyServing(context.Background(), tt.d, "courses_1264", 3072)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Name != "courses_1264" {
				t.Errorf("name = %q", c.Name)
			}
		})
	}
}
