package providers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subsync/internal/services"
)

func TestParseRefRoundTrip(t *testing.T) {
	tests := []struct {
		input string
		want  Ref
	}{
		{"opensubtitles:555", Ref{Provider: KindOpenSubtitles, FileID: 555}},
		{"OpenSubtitles:42", Ref{Provider: KindOpenSubtitles, FileID: 42}},
		{"subdl:/subtitle/3189858-3200938.zip", Ref{Provider: KindSubDL, Path: "/subtitle/3189858-3200938.zip"}},
		{"subdl:subtitle/1-2.zip", Ref{Provider: KindSubDL, Path: "/subtitle/1-2.zip"}},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRef(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			again, err := ParseRef(got.String())
			require.NoError(t, err)
			assert.Equal(t, got, again)
		})
	}
}

func TestParseRefRejectsMalformed(t *testing.T) {
	for _, input := range []string{"", "555", "opensubtitles:", "opensubtitles:abc", "opensubtitles:-1", "podnapisi:1",
		"subdl:http://127.0.0.1/meta", "subdl:https://dl.subdl.com/subtitle/1.zip", "subdl://evil.host/x", "subdl:\\\\evil.host\\x"} {
		t.Run(input, func(t *testing.T) {
			_, err := ParseRef(input)
			require.Error(t, err)
			assert.ErrorIs(t, err, services.ErrValidation)
		})
	}
}

func TestRefJSON(t *testing.T) {
	data, err := json.Marshal(struct {
		Ref Ref `json:"ref"`
	}{Ref{Provider: KindOpenSubtitles, FileID: 7}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"ref":"opensubtitles:7"}`, string(data))

	var decoded struct {
		Ref Ref `json:"ref"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"ref":"subdl:/subtitle/9.zip"}`), &decoded))
	assert.Equal(t, Ref{Provider: KindSubDL, Path: "/subtitle/9.zip"}, decoded.Ref)
}

func TestQueryValidate(t *testing.T) {
	require.Error(t, Query{}.Validate())
	require.NoError(t, Query{Text: "Inception"}.Validate())
	require.NoError(t, Query{IMDBID: "tt1375666"}.Validate())
	require.Error(t, Query{Text: "x", Season: -1}.Validate())
	assert.True(t, Query{Season: 1, Episode: 2}.IsEpisode())
	assert.False(t, Query{Season: 1}.IsEpisode())
}

func TestRegistrySearchMergesInProviderOrder(t *testing.T) {
	os := &fakeProvider{kind: KindOpenSubtitles, results: []Result{{Provider: KindOpenSubtitles, Release: "a"}}}
	sd := &fakeProvider{kind: KindSubDL, results: []Result{{Provider: KindSubDL, Release: "b"}, {Provider: KindSubDL, Release: "c"}}}
	reg := NewRegistry(nil, os, sd)

	results, err := reg.Search(context.Background(), Query{Text: "Inception"}, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "a", results[0].Release)
	assert.Equal(t, "c", results[2].Release)
	assert.Equal(t, []Kind{KindOpenSubtitles, KindSubDL}, reg.Kinds())
}

func TestRegistrySearchSkipsFailingProvider(t *testing.T) {
	os := &fakeProvider{kind: KindOpenSubtitles, err: errors.New("boom")}
	sd := &fakeProvider{kind: KindSubDL, results: []Result{{Provider: KindSubDL}}}
	reg := NewRegistry(nil, os, sd)

	results, err := reg.Search(context.Background(), Query{Text: "x"}, nil)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestRegistrySearchAllFail(t *testing.T) {
	reg := NewRegistry(nil,
		&fakeProvider{kind: KindOpenSubtitles, err: errors.New("a")},
		&fakeProvider{kind: KindSubDL, err: errors.New("b")},
	)
	_, err := reg.Search(context.Background(), Query{Text: "x"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, services.ErrUpstream)
}

func TestRegistrySearchSelectedKinds(t *testing.T) {
	os := &fakeProvider{kind: KindOpenSubtitles}
	sd := &fakeProvider{kind: KindSubDL}
	reg := NewRegistry(nil, os, sd)

	_, err := reg.Search(context.Background(), Query{Text: "x"}, []Kind{KindSubDL})
	require.NoError(t, err)
	assert.Empty(t, os.queries)
	assert.Len(t, sd.queries, 1)

	_, err = NewRegistry(nil, os).Search(context.Background(), Query{Text: "x"}, []Kind{KindSubDL})
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestRegistrySearchNoProviders(t *testing.T) {
	_, err := NewRegistry(nil).Search(context.Background(), Query{Text: "x"}, nil)
	assert.ErrorIs(t, err, services.ErrConfiguration)
}

func TestRegistryDownload(t *testing.T) {
	sd := &fakeProvider{kind: KindSubDL, payload: Payload{Data: []byte("1\n"), FileName: "a.srt"}}
	reg := NewRegistry(nil, sd)

	payload, err := reg.Download(context.Background(), Ref{Provider: KindSubDL, Path: "/x.zip"})
	require.NoError(t, err)
	assert.Equal(t, "a.srt", payload.FileName)

	_, err = reg.Download(context.Background(), Ref{Provider: KindOpenSubtitles, FileID: 1})
	assert.ErrorIs(t, err, services.ErrNotFound)
}
