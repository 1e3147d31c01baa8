package solr

import (
	"encoding/json"
	"net/http"
	"sort"

	"github.com/kailas-cloud/indexwatch/internal/domain"
)

type envelope struct {
	ResponseHeader *struct {
		Status *int `json:"status"`
	} `json:"responseHeader"`
	Response *struct {
		NumFound *int              `json:"numFound"`
		Docs     []domain.Document `json:"docs"`
	} `json:"response"`
	Error *struct {
		Code int    `json:"code"`
		Msg  string `json:"msg"`
	} `json:"error"`
	Fields map[string]json.RawMessage `json:"fields"`
}

func decode(body []byte) (*envelope, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &domain.MalformedResponseError{Reason: "invalid json", Err: err}
	}
	return &env, nil
}

// CheckResponse fails with *domain.HTTPStatusError on any status other than 200, whatever
// the body, and with *domain.SearchEngineError when a 200 body embeds an error object.
func CheckResponse(resp *Response) error {
	if resp.StatusCode != http.StatusOK {
		return &domain.HTTPStatusError{StatusCode: resp.StatusCode, Reason: resp.Reason()}
	}
	env, err := decode(resp.Body)
	if err != nil {
		return err
	}
	if env.Error != nil {
		return &domain.SearchEngineError{Code: env.Error.Code, Msg: env.Error.Msg}
	}
	return nil
}

// CountFromJSON returns response.numFound. A missing or negative count is an error, never zero.
func CountFromJSON(body []byte) (int, error) {
	env, err := decode(body)
	if err != nil {
		return 0, err
	}
	if env.Response == nil || env.Response.NumFound == nil {
		return 0, &domain.MalformedResponseError{Reason: "response.numFound not found"}
	}
	if *env.Response.NumFound < 0 {
		return 0, &domain.MalformedResponseError{Reason: "negative numFound"}
	}
	return *env.Response.NumFound, nil
}

// DocsFromJSON returns response.docs.
func DocsFromJSON(body []byte) ([]domain.Document, error) {
	env, err := decode(body)
	if err != nil {
		return nil, err
	}
	if env.Response == nil {
		return nil, &domain.MalformedResponseError{Reason: "response not found"}
	}
	if env.Response.Docs == nil {
		return []domain.Document{}, nil
	}
	return env.Response.Docs, nil
}

// UpdateStatusFromJSON returns responseHeader.status of an update response.
func UpdateStatusFromJSON(body []byte) (int, error) {
	env, err := decode(body)
	if err != nil {
		return 0, err
	}
	if env.ResponseHeader == nil || env.ResponseHeader.Status == nil {
		return 0, &domain.MalformedResponseError{Reason: "responseHeader.status not found"}
	}
	return *env.ResponseHeader.Status, nil
}

// FieldsFromJSON returns the field names of an admin/luke response.
func FieldsFromJSON(body []byte) ([]string, error) {
	env, err := decode(body)
	if err != nil {
		return nil, err
	}
	if env.Fields == nil {
		return nil, &domain.MalformedResponseError{Reason: "fields not found"}
	}
	names := make([]string, 0, len(env.Fields))
	for name := range env.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
