package core_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aretw0/notes/pkg/core"
)

// FakeAPI hands every call to the test over an unbuffered channel and blocks
// until the test answers. A call can therefore never be issued before the
// previous one has been answered, which makes ordering observable.
type FakeAPI struct {
	t     *testing.T
	Calls chan any
}

func NewFakeAPI(t *testing.T) *FakeAPI {
	return &FakeAPI{t, make(chan any)}
}

type listCall struct{}
type listResp struct {
	notes core.NoteList
	err   error
}

func (f *FakeAPI) List(ctx context.Context) (core.NoteList, error) {
	f.Calls <- &listCall{}
	resp := (<-f.Calls).(*listResp)
	return resp.notes, resp.err
}

type addCall struct{ text string }
type addResp struct{ err error }

func (f *FakeAPI) Add(ctx context.Context, text string) error {
	f.Calls <- &addCall{text}
	return (<-f.Calls).(*addResp).err
}

type deleteCall struct{ id int64 }
type deleteResp struct{ err error }

func (f *FakeAPI) Delete(ctx context.Context, id int64) error {
	f.Calls <- &deleteCall{id}
	return (<-f.Calls).(*deleteResp).err
}

func (f *FakeAPI) Close() {
	close(f.Calls)
}

func (f *FakeAPI) AssertAdd(text string, err error) {
	call, ok := (<-f.Calls).(*addCall)
	if !ok {
		f.t.Error("expected an add call")
		return
	}
	if call.text != text {
		f.t.Errorf("expected add with %q but was %q", text, call.text)
	}
	f.Calls <- &addResp{err}
}

func (f *FakeAPI) AssertList(notes core.NoteList, err error) {
	if _, ok := (<-f.Calls).(*listCall); !ok {
		f.t.Error("expected a list call")
		return
	}
	f.Calls <- &listResp{notes, err}
}

func (f *FakeAPI) AssertDone(t *testing.T) {
	if _, more := <-f.Calls; more {
		t.Fatal("did not expect more calls")
	}
}

func TestService_AddNote_WriteThenRead(t *testing.T) {
	api := NewFakeAPI(t)
	service := core.NewService(api, core.ServiceConfig{})

	go func() {
		api.AssertAdd("buy milk", nil)
		api.AssertList(core.NoteList{{Text: "buy milk"}}, nil)
		api.Close()
	}()

	notes, err := service.AddNote(context.TODO(), "buy milk")
	require.NoError(t, err)
	require.Equal(t, []string{"buy milk"}, notes.Texts())

	api.AssertDone(t)
}
