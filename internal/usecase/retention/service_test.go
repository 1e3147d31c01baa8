package retention

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/indexwatch/internal/domain"
)

const (
	siteA = `\sp\TestSite1\Shared Documents\a.docx`
	siteB = `\sp\TestSite2\Shared Documents\b.docx`
)

func TestAge(t *testing.T) {
	md := &mockDocuments{docs: []domain.Document{
		doc("1", siteA, "2021-12-23T10:02:05Z"),
		doc("2", siteB, ""),
		{"Url": siteB, "DateDeleted": "2021-12-23T10:02:05Z"},
	}}
	svc := newTestService(t, md, nil)

	n, err := svc.Age(context.Background(), DeletedItems(), 15)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 1 {
		t.Errorf("aged = %d, want 1", n)
	}
	if got := md.updates["1"]; got != "2021-12-08T10:02:05Z" {
		t.Errorf("DateDeleted = %v", got)
	}
}

func TestAge_BadTimestamp(t *testing.T) {
	md := &mockDocuments{docs: []domain.Document{doc("1", siteA, "yesterday")}}
	svc := newTestService(t, md, nil)
	if _, err := svc.Age(context.Background(), nil, 1); !errors.Is(err, domain.ErrTimeParse) {
		t.Errorf("err = %v, want ErrTimeParse", err)
	}
}

func TestAge_UpdateError(t *testing.T) {
	md := &mockDocuments{
		docs:      []domain.Document{doc("1", siteA, "2021-12-23T10:02:05Z")},
		updateErr: domain.ErrUpdateRejected,
	}
	svc := newTestService(t, md, nil)
	if _, err := svc.Age(context.Background(), nil, 1); !errors.Is(err, domain.ErrUpdateRejected) {
		t.Errorf("err = %v, want ErrUpdateRejected", err)
	}
}

func TestValidate_Satisfied(t *testing.T) {
	items := map[string]int{"TestSite1": 365, "TestSite2": NeverExpires}
	md := &mockDocuments{docs: []domain.Document{
		doc("1", siteA, "2021-12-23T10:02:05Z"),
		doc("2", siteB, "2021-12-23T10:02:05Z"),
	}}
	svc := newTestService(t, md, hideExpired(md, items, 367))

	rep, err := svc.Validate(context.Background(), nil, items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Window != 367 || rep.Aged != 2 || rep.Checked != 2 || rep.Hidden != 1 || rep.Visible != 1 {
		t.Errorf("report = %+v", rep)
	}
	if md.updates["1"] != "2020-12-21T10:02:05Z" {
		t.Errorf("aged DateDeleted = %v", md.updates["1"])
	}
}

func TestValidate_ItemStillVisible(t *testing.T) {
	items := map[string]int{"TestSite1": 30}
	md := &mockDocuments{docs: []domain.Document{doc("1", siteA, "2021-12-23T10:02:05Z")}}
	noop := ProcessorFunc(func(context.Context) error { return nil })
	svc := newTestService(t, md, noop)

	if _, err := svc.Validate(context.Background(), nil, items); !errors.Is(err, domain.ErrRetentionNotSatisfied) {
		t.Errorf("err = %v, want ErrRetentionNotSatisfied", err)
	}
}

func TestValidate_KeptItemHidden(t *testing.T) {
	items := map[string]int{"TestSite1": 30, "TestSite2": NeverExpires}
	md := &mockDocuments{docs: []domain.Document{doc("2", siteB, "2021-12-23T10:02:05Z")}}
	hideAll := ProcessorFunc(func(context.Context) error {
		for _, d := range md.docs {
			d["IsVisible"] = false
		}
		return nil
	})
	svc := newTestService(t, md, hideAll)

	if _, err := svc.Validate(context.Background(), nil, items); !errors.Is(err, domain.ErrRetentionNotSatisfied) {
		t.Errorf("err = %v, want ErrRetentionNotSatisfied", err)
	}
}

func TestValidate_NothingToCheck(t *testing.T) {
	svc := newTestService(t, &mockDocuments{}, ProcessorFunc(func(context.Context) error { return nil }))
	if _, err := svc.Validate(context.Background(), nil, map[string]int{"x": 1}); !errors.Is(err, domain.ErrNothingToCheck) {
		t.Errorf("err = %v, want ErrNothingToCheck", err)
	}
}

func TestValidate_ProcessorError(t *testing.T) {
	boom := errors.New("proxy unreachable")
	md := &mockDocuments{docs: []domain.Document{doc("1", siteA, "2021-12-23T10:02:05Z")}}
	svc := newTestService(t, md, ProcessorFunc(func(context.Context) error { return boom }))
	if _, err := svc.Validate(context.Background(), nil, map[string]int{"TestSite1": 1}); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
}

func TestValidate_NoProcessor(t *testing.T) {
	svc := newTestService(t, &mockDocuments{}, nil)
	if _, err := svc.Validate(context.Background(), nil, nil); err == nil {
		t.Error("expected error without a processor")
	}
}

func TestValidate_UnknownItemSkipped(t *testing.T) {
	items := map[string]int{"TestSite1": NeverExpires}
	md := &mockDocuments{docs: []domain.Document{
		doc("1", siteA, "2021-12-23T10:02:05Z"),
		doc("9", `\sp\Other\x`, "2021-12-23T10:02:05Z"),
	}}
	svc := newTestService(t, md, ProcessorFunc(func(context.Context) error { return nil }))

	rep, err := svc.Validate(context.Background(), nil, items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rep.Skipped != 1 || rep.Checked != 1 {
		t.Errorf("report = %+v", rep)
	}
}

func TestItemKey(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{siteA, "TestSite1"},
		{`a\b\c`, "c"},
		{`a\b`, ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ItemKey(tt.url); got != tt.want {
			t.Errorf("ItemKey(%q) = %q, want %q", tt.url, got, tt.want)
		}
	}
}

func TestWindow(t *testing.T) {
	if got := window(map[string]int{"a": 365, "b": -1, "c": 30}); got != 367 {
		t.Errorf("window = %d, want 367", got)
	}
	if got := window(map[string]int{"a": -1}); got != 1 {
		t.Errorf("window(-1) = %d, want 1", got)
	}
}
