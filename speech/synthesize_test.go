package speech

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kojish2018/video-ai-creator/internal/apperr"
)

// fakeEngine serves a minimal VOICEVOX protocol: /version, /audio_query
// returning a fixed mora plan, /synthesis returning a short valid WAV.
func fakeEngine(t *testing.T, morasPerQuery int) *httptest.Server {
	t.Helper()
	f := Format{Channels: 1, SampleRate: 24000, BitsPerSample: 16}
	wav := encodeWAV(f, make([]byte, 24000*f.blockAlign()/2)) // 0.5s of silence

	mux := http.NewServeMux()
	mux.HandleFunc("/version", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`"0.14.0"`))
	})
	mux.HandleFunc("/audio_query", func(w http.ResponseWriter, r *http.Request) {
		moras := make([]interface{}, morasPerQuery)
		for i := range moras {
			moras[i] = map[string]interface{}{"text": "ア"}
		}
		q := map[string]interface{}{
			"accent_phrases": []interface{}{
				map[string]interface{}{"moras": moras},
			},
			"speedScale": 1.0,
		}
		json.NewEncoder(w).Encode(q)
	})
	mux.HandleFunc("/synthesis", func(w http.ResponseWriter, r *http.Request) {
		var q Query
		if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "audio/wav")
		w.Write(wav)
	})
	return httptest.NewServer(mux)
}

func TestSynthesizeSingleChunk(t *testing.T) {
	srv := fakeEngine(t, 20)
	defer srv.Close()

	s := NewSynthesizer(NewClient(srv.URL, 1), 30)
	out := filepath.Join(t.TempDir(), "narration.wav")

	n, err := s.Synthesize(context.Background(), "こんにちは。", false, out)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if n.Path != out {
		t.Errorf("path = %q, want %q", n.Path, out)
	}
	if n.Duration <= 0 {
		t.Errorf("duration = %f, want > 0", n.Duration)
	}
	if n.SampleRate != 24000 {
		t.Errorf("sample rate = %d, want 24000", n.SampleRate)
	}
}

func TestSynthesizeChunkedConcatenation(t *testing.T) {
	srv := fakeEngine(t, 20)
	defer srv.Close()

	s := NewSynthesizer(NewClient(srv.URL, 1), 0)
	s.chunkBudget = 30
	out := filepath.Join(t.TempDir(), "narration.wav")

	// long enough to require at least three chunks
	text := strings.Repeat("これは少し長いテストの文章です。", 8)
	n, err := s.Synthesize(context.Background(), text, true, out)
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}

	// each chunk is 0.5s plus 0.2s inter-chunk silence
	if n.Duration < 1.0 {
		t.Errorf("duration = %f, expected concatenated chunks to exceed 1s", n.Duration)
	}
}

func TestSynthesizeEmptyTextFails(t *testing.T) {
	srv := fakeEngine(t, 20)
	defer srv.Close()

	s := NewSynthesizer(NewClient(srv.URL, 1), 30)
	if _, err := s.Synthesize(context.Background(), "", false, filepath.Join(t.TempDir(), "x.wav")); err == nil {
		t.Error("expected error for empty text")
	}
}

func TestSynthesizeUnreachableEngine(t *testing.T) {
	// port that nothing listens on
	s := NewSynthesizer(NewClient("http://127.0.0.1:1", 1), 30)
	_, err := s.Synthesize(context.Background(), "こんにちは。", false, filepath.Join(t.TempDir(), "x.wav"))
	if err == nil {
		t.Fatal("expected error for unreachable engine")
	}
	if kind := apperr.KindOf(err); kind != apperr.KindSynthUnreachable && kind != apperr.KindSynthTimeout {
		t.Errorf("kind = %v, want unreachable or timeout", kind)
	}
}

func TestAudioQueryBadRequestIsCorrupt(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/audio_query", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad speaker", http.StatusBadRequest)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := NewClient(srv.URL, 999)
	_, err := c.AudioQuery(context.Background(), "テスト")
	if err == nil {
		t.Fatal("expected error")
	}
	if kind := apperr.KindOf(err); kind != apperr.KindSynthCorrupt {
		t.Errorf("kind = %v, want %v", kind, apperr.KindSynthCorrupt)
	}
}

func TestQuerySpeedAdjustment(t *testing.T) {
	q := Query{
		"accent_phrases": []interface{}{
			map[string]interface{}{"moras": make([]interface{}, 300)},
		},
		"speedScale": 1.0,
	}

	// 300 moras at 0.15s each is 45s
	if est := q.EstimateDuration(); math.Abs(est-45.0) > 1e-9 {
		t.Fatalf("estimate = %f, want 45.0", est)
	}

	q.SetSpeedScale(1.5)
	if est := q.EstimateDuration(); math.Abs(est-30.0) > 1e-9 {
		t.Errorf("estimate at 1.5x = %f, want 30.0", est)
	}
}
