package translate

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"

	appErrors "github.com/escalando-ong/cms-api/pkg/errors"
)

// Translator converts Spanish source text into a target language.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// TargetEnglish is the only target the content pipeline requests today.
const TargetEnglish = "EN"

type deeplResponse struct {
	Translations []struct {
		Text string `json:"text"`
	} `json:"translations"`
}

// DeepLClient calls the DeepL v2 translate endpoint. Source language is
// fixed to Spanish.
type DeepLClient struct {
	client  *resty.Client
	apiKey  string
	baseURL string
}

// NewDeepLClient builds a DeepL client against the given base URL.
func NewDeepLClient(apiKey, baseURL string) *DeepLClient {
	return &DeepLClient{
		client:  resty.New(),
		apiKey:  apiKey,
		baseURL: baseURL,
	}
}

// Translate sends one text and returns its translation. Any non-2xx status
// or unexpected payload shape is surfaced as a TranslationError so callers
// can abort before persisting anything.
func (c *DeepLClient) Translate(ctx context.Context, text, targetLang string) (string, error) {
	var out deeplResponse

	resp, err := c.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"auth_key":    c.apiKey,
			"text":        text,
			"target_lang": targetLang,
			"source_lang": "ES",
		}).
		SetResult(&out).
		Post(c.baseURL)
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrTranslation.Code, appErrors.ErrTranslation.Status, "deepl request failed")
	}

	if resp.IsError() {
		return "", appErrors.Wrap(
			fmt.Errorf("deepl status %d: %s", resp.StatusCode(), resp.String()),
			appErrors.ErrTranslation.Code, appErrors.ErrTranslation.Status, "deepl returned an error status",
		)
	}

	if len(out.Translations) == 0 || out.Translations[0].Text == "" {
		return "", appErrors.Clone(appErrors.ErrTranslation, "unexpected deepl response shape")
	}

	return out.Translations[0].Text, nil
}
