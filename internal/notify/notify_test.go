package notify

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestConstructors(t *testing.T) {
	got := []Notification{
		Success("Register Success!", "").WithConfirm("Login Now!"),
		Error("Error!", "Something went wrong."),
	}
	want := []Notification{
		{Kind: KindSuccess, Title: "Register Success!", Confirm: "Login Now!"},
		{Kind: KindError, Title: "Error!", Message: "Something went wrong."},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want +got):\n%s", diff)
	}
}

func TestQueue(t *testing.T) {
	var q Queue
	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			q.Notify(Error("", "x"))
		}()
	}
	wg.Wait()

	if q.Len() != 10 {
		t.Fatalf("Len = %d", q.Len())
	}
	if got := q.Drain(); len(got) != 10 {
		t.Errorf("Drain = %d items", len(got))
	}
	if q.Len() != 0 || q.Drain() != nil {
		t.Error("Drain did not empty the queue")
	}

	var seen []Notification
	NotifierFunc(func(n Notification) { seen = append(seen, n) }).Notify(Success("t", "m"))
	if len(seen) != 1 || seen[0].Title != "t" {
		t.Errorf("NotifierFunc saw %v", seen)
	}
}
