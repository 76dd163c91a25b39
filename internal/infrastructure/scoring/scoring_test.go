package scoring

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glgenie/gl-genie/internal/domain/player"
	"github.com/glgenie/gl-genie/internal/platform/resilience"
)

func testPlayer(role player.Role, stats player.Stats) player.Player {
	return player.Player{ID: "p1", Name: "Ash", Team: "Alpha", Role: role, Stats: stats}
}

func TestBaselineScorerIsDeterministic(t *testing.T) {
	t.Parallel()

	scorer := NewBaselineScorer()
	p := testPlayer(player.RoleAllRounder, player.Stats{
		BatAvg: 38, BatSR: 140, BowlAvg: 24, BowlSR: 19, DeathOversPct: 0.4,
	})

	first, err := scorer.Score(context.Background(), p)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	second, err := scorer.Score(context.Background(), p)
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if first != second {
		t.Fatalf("scores differ: %v vs %v", first, second)
	}
}

func TestBaselineScorerWeighsRole(t *testing.T) {
	t.Parallel()

	scorer := NewBaselineScorer()
	stats := player.Stats{BatAvg: 50, BatSR: 150, BowlAvg: 45, BowlSR: 38, DeathOversPct: 0.1}

	batter, _ := scorer.Score(context.Background(), testPlayer(player.RoleBatter, stats))
	bowler, _ := scorer.Score(context.Background(), testPlayer(player.RoleBowler, stats))
	if batter <= bowler {
		t.Fatalf("strong batting stats should favor the batter: batter=%v bowler=%v", batter, bowler)
	}
}

func TestBaselineScorerFillsMissingStats(t *testing.T) {
	t.Parallel()

	scorer := NewBaselineScorer()
	withDefaults, _ := scorer.Score(context.Background(), testPlayer(player.RoleBatter, player.Stats{}))
	explicit, _ := scorer.Score(context.Background(), testPlayer(player.RoleBatter, player.DefaultStats()))
	if withDefaults != explicit {
		t.Fatalf("empty stats should score like defaults: %v vs %v", withDefaults, explicit)
	}
}

func TestClientScoresAgainstModelServer(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/score" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("unexpected method %s", r.Method)
		}
		_, _ = w.Write([]byte(`{"score": 87.5}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{HTTPClient: server.Client(), BaseURL: server.URL})

	score, err := client.Score(context.Background(), testPlayer(player.RoleBatter, player.DefaultStats()))
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if score != 87.5 {
		t.Fatalf("expected 87.5, got %v", score)
	}
}

func TestClientRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if hits.Add(1) < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"score": 42}`))
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		HTTPClient: server.Client(),
		BaseURL:    server.URL,
		Retry: resilience.RetryConfig{
			MaxAttempts: 3,
			BaseDelay:   time.Millisecond,
			MaxDelay:    5 * time.Millisecond,
		},
	})

	score, err := client.Score(context.Background(), testPlayer(player.RoleBowler, player.DefaultStats()))
	if err != nil {
		t.Fatalf("Score returned error: %v", err)
	}
	if score != 42 {
		t.Fatalf("expected 42, got %v", score)
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("expected 2 attempts, got %d", got)
	}
}

func TestClientDoesNotRetryBadRequests(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{HTTPClient: server.Client(), BaseURL: server.URL})

	if _, err := client.Score(context.Background(), testPlayer(player.RoleBatter, player.DefaultStats())); err == nil {
		t.Fatal("expected an error for a rejected request")
	}
	if got := hits.Load(); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}
