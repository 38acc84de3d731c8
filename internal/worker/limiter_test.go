package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiterAllow(t *testing.T) {
	l := NewLimiter(1, 2)

	if !l.Allow("en.wikipedia.org") {
		t.Error("first request should be allowed")
	}
	if !l.Allow("en.wikipedia.org") {
		t.Error("second request within burst should be allowed")
	}
	if l.Allow("en.wikipedia.org") {
		t.Error("third request should exceed burst")
	}

	// Each host gets its own budget.
	if !l.Allow("newsapi.org") {
		t.Error("different host should have a fresh budget")
	}
}

func TestLimiterWait(t *testing.T) {
	l := NewLimiter(100, 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	for i := 0; i < 3; i++ {
		if err := l.Wait(ctx, "api.tavily.com"); err != nil {
			t.Fatalf("Wait %d failed: %v", i, err)
		}
	}
}

func TestLimiterWaitCancelled(t *testing.T) {
	l := NewLimiter(0.001, 1)
	l.Allow("slow.example.com") // exhaust the burst

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx, "slow.example.com"); err == nil {
		t.Error("expected context deadline error")
	}
}

func TestLimiterWaitURL(t *testing.T) {
	l := NewLimiter(100, 5)

	ctx := context.Background()
	if err := l.WaitURL(ctx, "https://www.snopes.com/search/?q=test"); err != nil {
		t.Fatalf("WaitURL failed: %v", err)
	}
	if err := l.WaitURL(ctx, "://bad url"); err == nil {
		t.Error("expected parse error for malformed URL")
	}
}

func TestLimiterSetHostRate(t *testing.T) {
	l := NewLimiter(100, 10)
	l.SetHostRate("throttled.example.com", 1, 1)

	if !l.Allow("throttled.example.com") {
		t.Error("first request should pass")
	}
	if l.Allow("throttled.example.com") {
		t.Error("override burst of 1 should reject the second request")
	}
}
