package activitypub

import (
	"testing"
	"time"

	"github.com/bookmarkhive/hive/domain"
)

func TestNextBackoffSchedule(t *testing.T) {
	cases := []struct {
		attempts int
		expected time.Duration
	}{
		{1, 1 * time.Minute},
		{2, 5 * time.Minute},
		{3, 15 * time.Minute},
		{4, 60 * time.Minute},
		{5, 240 * time.Minute},
		{6, 1440 * time.Minute},
		{7, 1440 * time.Minute},
		{9, 1440 * time.Minute},
	}

	for _, tc := range cases {
		got := NextBackoff(tc.attempts)
		if got != tc.expected {
			t.Errorf("NextBackoff(%d): expected %v, got %v", tc.attempts, tc.expected, got)
		}
	}
}

func TestWorkerHandleUnknownKind(t *testing.T) {
	worker := NewWorker(nil, nil, time.Second, nil)

	err := worker.Handle(&domain.QueueMessage{Kind: "nonsense", Body: "{}"})
	if !IsUnrecoverable(err) {
		t.Errorf("Expected unrecoverable error for unknown kind, got %v", err)
	}
}

func TestWorkerHandleMalformedBody(t *testing.T) {
	worker := NewWorker(nil, nil, time.Second, nil)

	for _, kind := range []string{KindSendFollow, KindSend, KindReceiveFollow} {
		err := worker.Handle(&domain.QueueMessage{Kind: kind, Body: "not json"})
		if !IsUnrecoverable(err) {
			t.Errorf("Expected unrecoverable error for malformed %s body, got %v", kind, err)
		}
	}
}

func TestMessageKinds(t *testing.T) {
	if (SendFollowMessage{}).Kind() != KindSendFollow {
		t.Error("SendFollowMessage has the wrong kind")
	}
	if (SendMessage{}).Kind() != KindSend {
		t.Error("SendMessage has the wrong kind")
	}
	if (ReceiveFollowMessage{}).Kind() != KindReceiveFollow {
		t.Error("ReceiveFollowMessage has the wrong kind")
	}
}
