// Package notify models the user-notification capability: a popup with a
// kind (success or error), a title, a message, and an optional confirm
// button label.  The orchestrators only depend on Notifier; how a
// Notification is presented is up to the front end (flash cookie + modal
// markup on the web, plain text in the terminal).
package notify

import "sync"

// Kind distinguishes the two notification variants.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Notification is one user-visible popup.
type Notification struct {
	Kind    Kind   `json:"kind"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
	Confirm string `json:"confirm,omitempty"` // button label, "" means "OK"
}

// Success builds a success notification.
func Success(title, message string) Notification {
	return Notification{Kind: KindSuccess, Title: title, Message: message}
}

// Error builds an error notification.
func Error(title, message string) Notification {
	return Notification{Kind: KindError, Title: title, Message: message}
}

// WithConfirm returns a copy of n with a confirm button label.
func (n Notification) WithConfirm(label string) Notification {
	n.Confirm = label
	return n
}

// Notifier shows a notification to the user.
type Notifier interface {
	Notify(Notification)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notification)

// Notify implements Notifier.
func (f NotifierFunc) Notify(n Notification) { f(n) }

// Queue is a Notifier that buffers notifications until a front end drains
// them.  Safe for concurrent use.
type Queue struct {
	mu  sync.Mutex
	buf []Notification
}

// Notify implements Notifier.
func (q *Queue) Notify(n Notification) {
	q.mu.Lock()
	q.buf = append(q.buf, n)
	q.mu.Unlock()
}

// Drain returns and forgets every buffered notification, oldest first.
func (q *Queue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.buf
	q.buf = nil
	return out
}

// Len reports how many notifications are buffered.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}
