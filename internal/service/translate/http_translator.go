package translate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	drepo "Sentinel/internal/domain/repository"
	apphttp "Sentinel/pkg/http"
)

var errUnexpectedShape = errors.New("unexpected translate response shape")

// HTTPTranslator calls a gtx style endpoint that answers with nested arrays:
// [[["translated","original",...],...],...].
type HTTPTranslator struct {
	client *apphttp.Client
	url    string
	target string
}

func NewHTTPTranslator(client *apphttp.Client, url, target string) *HTTPTranslator {
	return &HTTPTranslator{client: client, url: url, target: target}
}

var _ drepo.Translator = (*HTTPTranslator)(nil)

func (t *HTTPTranslator) Translate(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}
	var raw []byte
	err := t.client.SendAndParse(ctx, &apphttp.RequestOptions{
		Method: apphttp.MethodGet,
		URL:    t.url,
		QueryParams: map[string][]string{
			"client": {"gtx"},
			"sl":     {"auto"},
			"tl":     {t.target},
			"dt":     {"t"},
			"q":      {text},
		},
	}, &raw)
	if err != nil {
		return "", fmt.Errorf("translate: %w", err)
	}
	return parseGTX(raw)
}

func parseGTX(raw []byte) (string, error) {
	var doc []json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil || len(doc) == 0 {
		return "", errUnexpectedShape
	}
	var segments [][]any
	if err := json.Unmarshal(doc[0], &segments); err != nil {
		return "", errUnexpectedShape
	}
	var b strings.Builder
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		if s, ok := seg[0].(string); ok {
			b.WriteString(s)
		}
	}
	if b.Len() == 0 {
		return "", errUnexpectedShape
	}
	return b.String(), nil
}
