package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

var ctx = context.Background()

type recordSender struct {
	got []string
	err error
}

func (r *recordSender) Send(_ context.Context, message string) error {
	r.got = append(r.got, message)
	return r.err
}

func TestFanout_DeliversToEveryChannel(t *testing.T) {
	email := &recordSender{}
	sms := &recordSender{}
	f := NewFanout(map[string]Sender{"email": email, "sms": sms})

	f.Send(ctx, []string{"email", "sms"}, "freezer down")

	for name, s := range map[string]*recordSender{"email": email, "sms": sms} {
		if len(s.got) != 1 || s.got[0] != "freezer down" {
			t.Errorf("%s: got %v", name, s.got)
		}
	}
}

func TestFanout_UnknownChannelSkipped(t *testing.T) {
	email := &recordSender{}
	f := NewFanout(map[string]Sender{"email": email})

	// Must not panic and must still hit the configured channel.
	f.Send(ctx, []string{"pager", "email"}, "hello")

	if len(email.got) != 1 {
		t.Fatalf("email deliveries: got %d, want 1", len(email.got))
	}
}

func TestFanout_FailureDoesNotStopOthers(t *testing.T) {
	bad := &recordSender{err: errors.New("smtp refused")}
	good := &recordSender{}
	f := NewFanout(map[string]Sender{"email": bad, "webhook": good})

	f.Send(ctx, []string{"email", "webhook"}, "hello")

	if len(good.got) != 1 {
		t.Fatalf("webhook must still be attempted after email fails")
	}
}

func TestFanout_NilSenders(t *testing.T) {
	f := NewFanout(nil)
	f.Send(ctx, []string{"email"}, "hello") // no panic
}

// --- webhook ---

func TestWebhook_PostsJSON(t *testing.T) {
	var body map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method: got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type: got %q", ct)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
	}))
	defer srv.Close()

	if err := NewWebhook(srv.URL).Send(ctx, "door ajar"); err != nil {
		t.Fatalf("Send: %v", err)
	}
	if body["message"] != "door ajar" {
		t.Fatalf("payload: got %v", body)
	}
}

func TestWebhook_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	}))
	defer srv.Close()

	if err := NewWebhook(srv.URL).Send(ctx, "x"); err == nil {
		t.Fatal("want error on HTTP 502")
	}
}

func TestWebhook_EmptyURL(t *testing.T) {
	if err := NewWebhook("").Send(ctx, "x"); err == nil {
		t.Fatal("want error when no URL is configured")
	}
}

func TestEmail_NotConfigured(t *testing.T) {
	if err := NewEmail("", "a@b", nil, "", "").Send(ctx, "x"); err == nil {
		t.Fatal("want error when smtp is not configured")
	}
}
