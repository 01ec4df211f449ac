package contactsearch

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// Strategy builds one candidate request against the service. Strategies are
// tried in order until one yields contacts.
type Strategy struct {
	Name  string
	Build func(ctx context.Context, baseURL string, p Params) (*http.Request, error)
}

// DefaultStrategies returns the endpoint order used against Amplemarket.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{Name: "POST /people/search", Build: postJSON("/people/search")},
		{Name: "POST /contacts/enrich", Build: postJSON("/contacts/enrich")},
		{Name: "GET /people", Build: getQuery("/people")},
		{Name: "GET /contacts", Build: getQuery("/contacts")},
	}
}

type searchBody struct {
	Name    string `json:"name,omitempty"`
	Email   string `json:"email,omitempty"`
	Company string `json:"company,omitempty"`
	Domain  string `json:"domain,omitempty"`
}

func postJSON(path string) func(context.Context, string, Params) (*http.Request, error) {
	return func(ctx context.Context, baseURL string, p Params) (*http.Request, error) {
		body, err := json.Marshal(searchBody{Name: p.Name, Email: p.Email, Company: p.Company, Domain: p.Domain})
		if err != nil {
			return nil, err
		}
		return http.NewRequestWithContext(ctx, http.MethodPost, baseURL+path, bytes.NewReader(body))
	}
}

func getQuery(path string) func(context.Context, string, Params) (*http.Request, error) {
	return func(ctx context.Context, baseURL string, p Params) (*http.Request, error) {
		q := url.Values{}
		for key, value := range map[string]string{"name": p.Name, "email": p.Email, "company": p.Company, "domain": p.Domain} {
			if value != "" {
				q.Set(key, value)
			}
		}
		target := baseURL + path
		if encoded := q.Encode(); encoded != "" {
			target += "?" + encoded
		}
		return http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	}
}
