package service

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/escalando-ong/cms-api/internal/models"
	"github.com/escalando-ong/cms-api/internal/translate"
)

// Pair describes one localizable scalar field going through the sync engine.
// Incoming values are nil when the payload omitted them; stored values are
// empty strings on create.
type Pair struct {
	Name       string
	IncomingES *string
	IncomingEN *string
	StoredES   string
	StoredEN   string
}

// PairResult is the resolved value of one localizable field. Translated is
// non-nil when the English side was regenerated by the translation provider.
type PairResult struct {
	ES         string
	EN         string
	Translated *models.TranslationChange
}

// TagsPair is the list-valued counterpart of Pair. A nil incoming slice
// means the payload omitted the field; an empty non-nil slice is a value.
type TagsPair struct {
	IncomingES []string
	IncomingEN []string
	StoredES   []string
	StoredEN   []string
}

// TagsResult is the resolved tag lists, order and length preserved.
type TagsResult struct {
	ES         []string
	EN         []string
	Translated *models.TranslationChange
}

// SyncRequest bundles every localizable field of one create or update call so
// all required translations fan out together.
type SyncRequest struct {
	Pairs []Pair
	Tags  *TagsPair
}

// SyncResult carries the resolved fields keyed by Pair.Name.
type SyncResult struct {
	Pairs map[string]PairResult
	Tags  *TagsResult
}

// Changes collects the audit payloads for every field that was translated,
// in no particular order.
func (r *SyncResult) Changes() []models.TranslationChange {
	var changes []models.TranslationChange
	for _, p := range r.Pairs {
		if p.Translated != nil {
			changes = append(changes, *p.Translated)
		}
	}
	if r.Tags != nil && r.Tags.Translated != nil {
		changes = append(changes, *r.Tags.Translated)
	}
	return changes
}

// SyncEngine keeps the English variant of localizable fields consistent with
// their Spanish source. It translates only fields whose Spanish value differs
// from what is currently stored, runs all translations for one request
// concurrently, and aborts the whole request on the first failure so nothing
// partial is ever persisted.
type SyncEngine struct {
	translator translate.Translator
}

// NewSyncEngine creates a sync engine on top of a translator.
func NewSyncEngine(translator translate.Translator) *SyncEngine {
	return &SyncEngine{translator: translator}
}

// needsTranslation decides whether the pair requires a translation call and
// returns the Spanish text to translate. An explicitly supplied English value
// always wins; an omitted Spanish value means no change; an unchanged Spanish
// value carries the stored English forward.
func (p Pair) needsTranslation() (string, bool) {
	if p.IncomingEN != nil {
		return "", false
	}
	if p.IncomingES == nil {
		return "", false
	}
	if *p.IncomingES == p.StoredES {
		return "", false
	}
	if *p.IncomingES == "" {
		return "", false
	}
	return *p.IncomingES, true
}

func (p Pair) resolvedES() string {
	if p.IncomingES != nil {
		return *p.IncomingES
	}
	return p.StoredES
}

// resolvedEN returns the English value when no translation is required.
func (p Pair) resolvedEN() string {
	if p.IncomingEN != nil {
		return *p.IncomingEN
	}
	if p.IncomingES != nil && *p.IncomingES == "" {
		// Source cleared: an empty string has no translation.
		return ""
	}
	return p.StoredEN
}

func (t TagsPair) needsTranslation() bool {
	if t.IncomingES == nil {
		return false
	}
	if t.IncomingEN != nil {
		return false
	}
	return !stringSlicesEqual(t.IncomingES, t.StoredES)
}

// Resolve runs the changed-field detector over every pair, fans out the
// required translation calls, and waits for all of them. The first failure
// cancels the rest and is returned verbatim.
func (e *SyncEngine) Resolve(ctx context.Context, req SyncRequest) (*SyncResult, error) {
	res := &SyncResult{Pairs: make(map[string]PairResult, len(req.Pairs))}

	// Settle every carry-forward pair before the first worker starts, so
	// res.Pairs is only written under mu once the group is running.
	type pendingPair struct {
		pair Pair
		text string
	}
	pending := make([]pendingPair, 0, len(req.Pairs))
	for _, pair := range req.Pairs {
		text, needed := pair.needsTranslation()
		if !needed {
			res.Pairs[pair.Name] = PairResult{ES: pair.resolvedES(), EN: pair.resolvedEN()}
			continue
		}
		pending = append(pending, pendingPair{pair: pair, text: text})
	}

	g, gctx := errgroup.WithContext(ctx)
	var mu sync.Mutex

	for _, p := range pending {
		pair, text := p.pair, p.text
		g.Go(func() error {
			translated, err := e.translator.Translate(gctx, text, translate.TargetEnglish)
			if err != nil {
				return err
			}
			mu.Lock()
			res.Pairs[pair.Name] = PairResult{
				ES: text,
				EN: translated,
				Translated: &models.TranslationChange{
					Field:      pair.Name,
					Original:   text,
					Translated: translated,
				},
			}
			mu.Unlock()
			return nil
		})
	}

	var translatedTags []string
	tagsTranslated := false
	if req.Tags != nil && req.Tags.needsTranslation() {
		tagsTranslated = true
		translatedTags = make([]string, len(req.Tags.IncomingES))
		for i, tag := range req.Tags.IncomingES {
			i, tag := i, tag
			g.Go(func() error {
				translated, err := e.translator.Translate(gctx, tag, translate.TargetEnglish)
				if err != nil {
					return err
				}
				translatedTags[i] = translated
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if req.Tags != nil {
		tags := *req.Tags
		result := TagsResult{ES: tags.StoredES, EN: tags.StoredEN}
		if tags.IncomingES != nil {
			result.ES = tags.IncomingES
		}
		switch {
		case tags.IncomingEN != nil:
			result.EN = tags.IncomingEN
		case tagsTranslated:
			result.EN = translatedTags
			result.Translated = &models.TranslationChange{
				Field:      "tags",
				Original:   append([]string(nil), tags.IncomingES...),
				Translated: translatedTags,
			}
		}
		res.Tags = &result
	}

	return res, nil
}

func stringSlicesEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
