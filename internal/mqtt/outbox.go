package mqtt

import (
	"github.com/rs/zerolog"

	"github.com/sweeney/breath-pacer/internal/logging"
)

// bufferedMsg stores a serialized MQTT message for replay after reconnection.
type bufferedMsg struct {
	topic    string
	payload  []byte
	qos      byte
	retained bool
}

// outbox queues messages while the broker is unreachable, oldest first.
// Session logs outrank system events: when full, the oldest system event
// is evicted before any session log. A retained message replaces a queued
// retained message on the same topic, since the broker keeps only the last.
// Not safe for concurrent use; RealPublisher holds its mutex around it.
type outbox struct {
	msgs     []bufferedMsg
	capacity int
	dropped  int  // messages evicted since creation
	warned   bool // full warning logged since last drain
	log      zerolog.Logger
}

func newOutbox(capacity int) *outbox {
	return &outbox{
		msgs:     make([]bufferedMsg, 0, capacity),
		capacity: capacity,
		log:      logging.WithComponent("mqtt"),
	}
}

func (o *outbox) push(msg bufferedMsg) {
	if msg.retained {
		for i, m := range o.msgs {
			if m.retained && m.topic == msg.topic {
				o.remove(i)
				break
			}
		}
	}

	if len(o.msgs) == o.capacity {
		if !o.warned {
			o.log.Warn().Int("capacity", o.capacity).Msg("outbox full, dropping oldest")
			o.warned = true
		}
		o.remove(o.victim())
		o.dropped++
	}
	o.msgs = append(o.msgs, msg)
}

// victim picks the oldest system event, or the oldest message if only
// session logs are queued.
func (o *outbox) victim() int {
	for i, m := range o.msgs {
		if m.topic != TopicSessions {
			return i
		}
	}
	return 0
}

func (o *outbox) remove(i int) {
	o.msgs = append(o.msgs[:i], o.msgs[i+1:]...)
}

func (o *outbox) drain() []bufferedMsg {
	if len(o.msgs) == 0 {
		return nil
	}
	out := o.msgs
	o.msgs = make([]bufferedMsg, 0, o.capacity)
	o.warned = false
	return out
}

func (o *outbox) len() int {
	return len(o.msgs)
}
