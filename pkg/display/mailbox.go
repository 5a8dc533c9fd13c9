package display

const DefaultLogQueueSize = 64

// Mailbox is a Sink that a renderer drains on its own schedule. Snapshots
// and statuses each have a single slot where the newest value wins. Log
// lines queue up to a bound, dropping the oldest.
//
// Publish, SetStatus and Log are meant to be called from one goroutine.
type Mailbox struct {
	snapshots chan Snapshot
	statuses  chan string
	logs      chan string
}

func NewMailbox(logQueueSize int) *Mailbox {
	if logQueueSize < 1 {
		logQueueSize = DefaultLogQueueSize
	}
	return &Mailbox{
		snapshots: make(chan Snapshot, 1),
		statuses:  make(chan string, 1),
		logs:      make(chan string, logQueueSize),
	}
}

func (m *Mailbox) Publish(s Snapshot) {
	for {
		select {
		case m.snapshots <- s:
			return
		default:
		}
		// full: throw away the stale one
		select {
		case <-m.snapshots:
		default:
		}
	}
}

func (m *Mailbox) SetStatus(status string) {
	for {
		select {
		case m.statuses <- status:
			return
		default:
		}
		select {
		case <-m.statuses:
		default:
		}
	}
}

func (m *Mailbox) Log(line string) {
	for {
		select {
		case m.logs <- line:
			return
		default:
		}
		select {
		case <-m.logs:
		default:
		}
	}
}

// Update is everything collected by one Drain.
type Update struct {
	Snapshot *Snapshot
	Status   *string
	Logs     []string
}

func (u Update) Empty() bool {
	return u.Snapshot == nil && u.Status == nil && len(u.Logs) == 0
}

// Drain takes whatever is waiting without blocking.
func (m *Mailbox) Drain() Update {
	var u Update

	select {
	case s := <-m.snapshots:
		u.Snapshot = &s
	default:
	}

	select {
	case s := <-m.statuses:
		u.Status = &s
	default:
	}

	for {
		select {
		case line := <-m.logs:
			u.Logs = append(u.Logs, line)
		default:
			return u
		}
	}
}
