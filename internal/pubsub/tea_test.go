package pubsub

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestListenCmd_ReceivesEvent(t *testing.T) {
	ch := make(chan string, 1)
	ch <- "hello world"

	msg := ListenCmd[string](ch)()

	event, ok := msg.(string)
	require.True(t, ok, "msg should be string")
	require.Equal(t, "hello world", event)
}

func TestListenCmd_ChannelClosed(t *testing.T) {
	ch := make(chan string)
	close(ch)

	msg := ListenCmd[string](ch)()

	require.Nil(t, msg, "should return nil when channel closed")
}

func TestContinuousListener_Listen(t *testing.T) {
	channel := NewChannel[int]("test")
	listener := NewContinuousListener(channel, 0)
	defer listener.Close()

	channel.Publish(1)
	channel.Publish(2)
	channel.Publish(3)

	for _, want := range []int{1, 2, 3} {
		msg := listener.Listen()()
		event, ok := msg.(int)
		require.True(t, ok, "msg should be int")
		require.Equal(t, want, event)
	}
}

func TestContinuousListener_DropsWhenFull(t *testing.T) {
	channel := NewChannel[int]("test")
	listener := NewContinuousListener(channel, 1)
	defer listener.Close()

	channel.Publish(1)
	channel.Publish(2) // dropped, must not block

	require.Equal(t, 1, listener.Listen()())
}

func TestContinuousListener_Close(t *testing.T) {
	channel := NewChannel[int]("test")
	listener := NewContinuousListener(channel, 4)

	listener.Close()
	listener.Close()
	channel.Publish(1)

	require.Equal(t, 0, channel.Len())
	require.Nil(t, listener.Listen()())
}

func TestContinuousListener_CloseAfterChannelClosed(t *testing.T) {
	channel := NewChannel[int]("test")
	listener := NewContinuousListener(channel, 4)

	channel.Close()
	listener.Close()

	require.Nil(t, listener.Listen()())
}
