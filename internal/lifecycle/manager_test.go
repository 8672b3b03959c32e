package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeComponent struct {
	name     string
	startErr error
	events   *[]string
}

func (f *fakeComponent) Start(context.Context) error {
	*f.events = append(*f.events, "start:"+f.name)
	return f.startErr
}

func (f *fakeComponent) Stop(context.Context) error {
	*f.events = append(*f.events, "stop:"+f.name)
	return nil
}

func (f *fakeComponent) Name() string { return f.name }

func TestManager_StartStopOrder(t *testing.T) {
	var events []string
	m := NewManager()
	require.NoError(t, m.Register(&fakeComponent{name: "tracing", events: &events}))
	require.NoError(t, m.Register(&fakeComponent{name: "apiserver", events: &events}))

	require.NoError(t, m.Start(context.Background()))
	require.NoError(t, m.Stop(context.Background()))

	assert.Equal(t, []string{
		"start:tracing", "start:apiserver",
		"stop:apiserver", "stop:tracing",
	}, events)
}

func TestManager_StartFailureRollsBack(t *testing.T) {
	var events []string
	m := NewManager()
	require.NoError(t, m.Register(&fakeComponent{name: "tracing", events: &events}))
	require.NoError(t, m.Register(&fakeComponent{name: "apiserver", events: &events, startErr: errors.New("port in use")}))

	err := m.Start(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "apiserver")
	assert.Equal(t, []string{"start:tracing", "start:apiserver", "stop:tracing"}, events)
}

func TestManager_RegisterValidation(t *testing.T) {
	var events []string
	m := NewManager()
	assert.Error(t, m.Register(nil))
	assert.Error(t, m.Register(&fakeComponent{name: "", events: &events}))

	c := &fakeComponent{name: "apiserver", events: &events}
	require.NoError(t, m.Register(c))
	assert.Error(t, m.Register(c))
}
