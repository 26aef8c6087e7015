package controller

import (
	"github.com/discordtext/backend/internal/message"
	"github.com/discordtext/backend/internal/videos"
)

// Event is one input to the controller. The set is closed.
type Event interface {
	event()
}

// StyleSelected switches the announcement style.
type StyleSelected struct {
	Style message.Style
}

// FetchRequested asks for the metadata of URL using APIKey.
type FetchRequested struct {
	URL    string
	APIKey string
}

// FetchSucceeded carries the metadata returned for fetch number Seq.
type FetchSucceeded struct {
	Seq    uint64
	URL    string
	Record videos.Record
}

// FetchFailed reports that fetch number Seq failed.
type FetchFailed struct {
	Seq uint64
	Err error
}

// SaveRequested asks to save the thumbnail of the current record.
type SaveRequested struct{}

// SaveSucceeded reports where the server stored the thumbnail.
type SaveSucceeded struct {
	Path string
}

// SaveFailed reports a failed thumbnail save.
type SaveFailed struct {
	Err error
}

// CopyRequested copies the current message to the clipboard.
type CopyRequested struct{}

// LabelExpired ends the feedback window of a button. Gen identifies the timer
// that produced it; expiries from cancelled timers are ignored.
type LabelExpired struct {
	Button Button
	Gen    uint64
}

func (StyleSelected) event()  {}
func (FetchRequested) event() {}
func (FetchSucceeded) event() {}
func (FetchFailed) event()    {}
func (SaveRequested) event()  {}
func (SaveSucceeded) event()  {}
func (SaveFailed) event()     {}
func (CopyRequested) event()  {}
func (LabelExpired) event()   {}
