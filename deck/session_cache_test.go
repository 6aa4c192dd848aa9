package deck

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestSessionCache_CommitAndSnapshot(t *testing.T) {
	c := NewSessionCache(nil, 0)
	d := mustParse(t, sampleDoc)

	adv, err := c.WithSessionLock(context.Background(), "s1", func(current *SlideDeck) (*SlideDeck, []Violation, error) {
		if current != nil {
			t.Error("fresh session should start with a nil deck")
		}
		return d, nil, nil
	})
	if err != nil || len(adv) != 0 {
		t.Fatalf("commit failed: adv=%v err=%v", adv, err)
	}

	got, html, ok := c.Snapshot("s1")
	if !ok {
		t.Fatal("snapshot missing after commit")
	}
	if got != d {
		t.Error("snapshot must return the committed model")
	}
	if html != ToHTML(d) {
		t.Error("cached HTML must be the canonical serialization")
	}

	if _, _, ok := c.Snapshot("other"); ok {
		t.Error("unknown session must have no snapshot")
	}
}

func TestSessionCache_FailedMutationKeepsState(t *testing.T) {
	c := NewSessionCache(nil, 0)
	d := mustParse(t, sampleDoc)
	ctx := context.Background()

	if _, err := c.WithSessionLock(ctx, "s1", func(*SlideDeck) (*SlideDeck, []Violation, error) {
		return d, nil, nil
	}); err != nil {
		t.Fatal(err)
	}

	wantErr := errors.New("edit rejected")
	_, err := c.WithSessionLock(ctx, "s1", func(current *SlideDeck) (*SlideDeck, []Violation, error) {
		return nil, nil, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("err = %v, want %v", err, wantErr)
	}

	got, _, ok := c.Snapshot("s1")
	if !ok || got != d {
		t.Error("failed mutation must leave the committed state untouched")
	}
}

func TestSessionCache_LockTimeout(t *testing.T) {
	c := NewSessionCache(nil, 50*time.Millisecond)
	ctx := context.Background()
	d := mustParse(t, sampleDoc)

	started := make(chan struct{})
	release := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.WithSessionLock(ctx, "s1", func(*SlideDeck) (*SlideDeck, []Violation, error) {
			close(started)
			<-release
			return d, nil, nil
		})
	}()

	<-started
	_, err := c.WithSessionLock(ctx, "s1", func(*SlideDeck) (*SlideDeck, []Violation, error) {
		return d, nil, nil
	})
	var ce *ConcurrencyError
	if !errors.As(err, &ce) {
		t.Fatalf("err = %v, want ConcurrencyError", err)
	}
	if ce.SessionID != "s1" {
		t.Errorf("ConcurrencyError session = %q", ce.SessionID)
	}

	close(release)
	wg.Wait()

	// The lock is per session: a different session is not blocked.
	if _, err := c.WithSessionLock(ctx, "s2", func(*SlideDeck) (*SlideDeck, []Violation, error) {
		return d, nil, nil
	}); err != nil {
		t.Fatalf("independent session blocked: %v", err)
	}
}

func TestSessionCache_MutationsSerialize(t *testing.T) {
	c := NewSessionCache(nil, 5*time.Second)
	e := newTestEditor(DefaultPolicy())
	ctx := context.Background()

	if _, err := c.WithSessionLock(ctx, "s1", func(*SlideDeck) (*SlideDeck, []Violation, error) {
		return mustParse(t, sampleDoc), nil, nil
	}); err != nil {
		t.Fatal(err)
	}

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			frag := fmt.Sprintf(`<section class="slide"><h2>w%d</h2></section>`, n)
			_, err := c.WithSessionLock(ctx, "s1", func(current *SlideDeck) (*SlideDeck, []Violation, error) {
				return e.Insert(current, current.Len(), frag)
			})
			if err != nil {
				t.Errorf("worker %d: %v", n, err)
			}
		}(i)
	}
	wg.Wait()

	got, html, ok := c.Snapshot("s1")
	if !ok {
		t.Fatal("snapshot missing")
	}
	if got.Len() != 3+workers {
		t.Errorf("len = %d, want %d: lost updates under concurrency", got.Len(), 3+workers)
	}
	if vs := Validate(got, DefaultPolicy()); len(vs) != 0 {
		t.Errorf("violations after concurrent edits: %v", vs)
	}
	if html != ToHTML(got) {
		t.Error("cached HTML out of sync with the committed model")
	}
}

func TestSessionCache_LoadAndDrop(t *testing.T) {
	c := NewSessionCache(nil, 0)
	ctx := context.Background()

	d, err := c.Load(ctx, "resumed", sampleDoc)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if d.Len() != 3 {
		t.Errorf("loaded deck len = %d, want 3", d.Len())
	}
	if got, _, ok := c.Snapshot("resumed"); !ok || got != d {
		t.Error("loaded deck must be committed into the cache")
	}

	if _, err := c.Load(ctx, "bad", "<p>no slides</p>"); err == nil {
		t.Error("loading an unparsable snapshot must fail")
	}
	if _, _, ok := c.Snapshot("bad"); ok {
		t.Error("failed load must not leave state behind")
	}

	c.Drop("resumed")
	if _, _, ok := c.Snapshot("resumed"); ok {
		t.Error("dropped session still has a snapshot")
	}
}
