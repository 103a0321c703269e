package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type translatorStub struct {
	calls int64
	err   error
}

func (t *translatorStub) Translate(ctx context.Context, text, targetLang string) (string, error) {
	atomic.AddInt64(&t.calls, 1)
	if t.err != nil {
		return "", t.err
	}
	switch text {
	case "Hola":
		return "Hello", nil
	case "Adiós":
		return "Goodbye", nil
	default:
		return "en:" + text, nil
	}
}

func strPtr(s string) *string { return &s }

func TestResolveTranslatesNewSpanishField(t *testing.T) {
	stub := &translatorStub{}
	engine := NewSyncEngine(stub)

	res, err := engine.Resolve(context.Background(), SyncRequest{
		Pairs: []Pair{{Name: "title", IncomingES: strPtr("Hola")}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Hola", res.Pairs["title"].ES)
	assert.Equal(t, "Hello", res.Pairs["title"].EN)
	require.NotNil(t, res.Pairs["title"].Translated)
	assert.Equal(t, "title", res.Pairs["title"].Translated.Field)
	assert.EqualValues(t, 1, stub.calls)
}

func TestResolveExplicitEnglishWins(t *testing.T) {
	stub := &translatorStub{}
	engine := NewSyncEngine(stub)

	res, err := engine.Resolve(context.Background(), SyncRequest{
		Pairs: []Pair{{Name: "title", IncomingES: strPtr("Hola"), IncomingEN: strPtr("Custom")}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Custom", res.Pairs["title"].EN)
	assert.Nil(t, res.Pairs["title"].Translated)
	assert.EqualValues(t, 0, stub.calls)
}

func TestResolveUnchangedSpanishSkipsTranslation(t *testing.T) {
	stub := &translatorStub{}
	engine := NewSyncEngine(stub)

	res, err := engine.Resolve(context.Background(), SyncRequest{
		Pairs: []Pair{{Name: "title", IncomingES: strPtr("Hola"), StoredES: "Hola", StoredEN: "Hello"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello", res.Pairs["title"].EN)
	assert.Nil(t, res.Pairs["title"].Translated)
	assert.EqualValues(t, 0, stub.calls)
}

func TestResolveChangedSpanishRetranslates(t *testing.T) {
	stub := &translatorStub{}
	engine := NewSyncEngine(stub)

	res, err := engine.Resolve(context.Background(), SyncRequest{
		Pairs: []Pair{{Name: "title", IncomingES: strPtr("Adiós"), StoredES: "Hola", StoredEN: "Hello"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Adiós", res.Pairs["title"].ES)
	assert.Equal(t, "Goodbye", res.Pairs["title"].EN)
	require.NotNil(t, res.Pairs["title"].Translated)
	assert.Equal(t, "Adiós", res.Pairs["title"].Translated.Original)
	assert.Equal(t, "Goodbye", res.Pairs["title"].Translated.Translated)
}

func TestResolveOmittedFieldKeepsStoredValues(t *testing.T) {
	stub := &translatorStub{}
	engine := NewSyncEngine(stub)

	res, err := engine.Resolve(context.Background(), SyncRequest{
		Pairs: []Pair{{Name: "title", StoredES: "Hola", StoredEN: "Hello"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "Hola", res.Pairs["title"].ES)
	assert.Equal(t, "Hello", res.Pairs["title"].EN)
	assert.EqualValues(t, 0, stub.calls)
}

func TestResolveClearedSpanishClearsEnglish(t *testing.T) {
	stub := &translatorStub{}
	engine := NewSyncEngine(stub)

	res, err := engine.Resolve(context.Background(), SyncRequest{
		Pairs: []Pair{{Name: "phrase", IncomingES: strPtr(""), StoredES: "Hola", StoredEN: "Hello"}},
	})
	require.NoError(t, err)

	assert.Equal(t, "", res.Pairs["phrase"].ES)
	assert.Equal(t, "", res.Pairs["phrase"].EN)
	assert.EqualValues(t, 0, stub.calls)
}

func TestResolveMixedChangedAndUnchangedFields(t *testing.T) {
	stub := &translatorStub{}
	engine := NewSyncEngine(stub)

	// Changed pairs fan out to workers while unchanged ones carry stored
	// values forward; both kinds land in the same result map.
	res, err := engine.Resolve(context.Background(), SyncRequest{
		Pairs: []Pair{
			{Name: "title", IncomingES: strPtr("Hola"), StoredES: "Bienvenida", StoredEN: "Welcome"},
			{Name: "body", IncomingES: strPtr("Cuerpo"), StoredES: "Cuerpo", StoredEN: "Body"},
			{Name: "category", IncomingES: strPtr("Adiós"), StoredES: "comunidad", StoredEN: "community"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Hello", res.Pairs["title"].EN)
	assert.Equal(t, "Body", res.Pairs["body"].EN)
	assert.Nil(t, res.Pairs["body"].Translated)
	assert.Equal(t, "Goodbye", res.Pairs["category"].EN)
	assert.EqualValues(t, 2, stub.calls)
	assert.Len(t, res.Changes(), 2)
}

func TestResolveTagsTranslatedInOrder(t *testing.T) {
	stub := &translatorStub{}
	engine := NewSyncEngine(stub)

	res, err := engine.Resolve(context.Background(), SyncRequest{
		Tags: &TagsPair{IncomingES: []string{"educación", "salud", "niñez"}},
	})
	require.NoError(t, err)

	require.NotNil(t, res.Tags)
	assert.Equal(t, []string{"educación", "salud", "niñez"}, res.Tags.ES)
	assert.Equal(t, []string{"en:educación", "en:salud", "en:niñez"}, res.Tags.EN)
	require.NotNil(t, res.Tags.Translated)
	assert.Equal(t, "tags", res.Tags.Translated.Field)
	assert.EqualValues(t, 3, stub.calls)
}

func TestResolveTagsUnchangedSkipsTranslation(t *testing.T) {
	stub := &translatorStub{}
	engine := NewSyncEngine(stub)

	stored := []string{"educación", "salud"}
	res, err := engine.Resolve(context.Background(), SyncRequest{
		Tags: &TagsPair{IncomingES: stored, StoredES: stored, StoredEN: []string{"education", "health"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"education", "health"}, res.Tags.EN)
	assert.Nil(t, res.Tags.Translated)
	assert.EqualValues(t, 0, stub.calls)
}

func TestResolveReorderedTagsRetranslate(t *testing.T) {
	stub := &translatorStub{}
	engine := NewSyncEngine(stub)

	res, err := engine.Resolve(context.Background(), SyncRequest{
		Tags: &TagsPair{
			IncomingES: []string{"salud", "educación"},
			StoredES:   []string{"educación", "salud"},
			StoredEN:   []string{"education", "health"},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"en:salud", "en:educación"}, res.Tags.EN)
	assert.EqualValues(t, 2, stub.calls)
}

func TestResolveExplicitEnglishTagsWin(t *testing.T) {
	stub := &translatorStub{}
	engine := NewSyncEngine(stub)

	res, err := engine.Resolve(context.Background(), SyncRequest{
		Tags: &TagsPair{IncomingES: []string{"salud"}, IncomingEN: []string{"wellness"}},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"wellness"}, res.Tags.EN)
	assert.Nil(t, res.Tags.Translated)
	assert.EqualValues(t, 0, stub.calls)
}

func TestResolveTranslationFailureAborts(t *testing.T) {
	stub := &translatorStub{err: errors.New("provider down")}
	engine := NewSyncEngine(stub)

	_, err := engine.Resolve(context.Background(), SyncRequest{
		Pairs: []Pair{
			{Name: "title", IncomingES: strPtr("Hola")},
			{Name: "body", IncomingES: strPtr("Adiós")},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "provider down")
}

func TestChangesCollectsAllTranslatedFields(t *testing.T) {
	stub := &translatorStub{}
	engine := NewSyncEngine(stub)

	res, err := engine.Resolve(context.Background(), SyncRequest{
		Pairs: []Pair{
			{Name: "title", IncomingES: strPtr("Hola")},
			{Name: "body", IncomingES: strPtr("Adiós")},
		},
		Tags: &TagsPair{IncomingES: []string{"salud"}},
	})
	require.NoError(t, err)
	assert.Len(t, res.Changes(), 3)
}
