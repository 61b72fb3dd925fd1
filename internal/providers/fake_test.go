package providers

import (
	"context"
	"errors"
)

type fakeProvider struct {
	kind    Kind
	results []Result
	err     error
	payload Payload
	queries []Query
}

func (f *fakeProvider) Kind() Kind { return f.kind }

func (f *fakeProvider) Search(_ context.Context, q Query) ([]Result, error) {
	f.queries = append(f.queries, q)
	return f.results, f.err
}

func (f *fakeProvider) Download(_ context.Context, ref Ref) (Payload, error) {
	if ref.Provider != f.kind {
		return Payload{}, errors.New("wrong provider")
	}
	return f.payload, f.err
}
