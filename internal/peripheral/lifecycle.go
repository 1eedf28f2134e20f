package peripheral

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// State is the connection lifecycle state. The device cycles between the
// two for its entire powered lifetime; there is no terminal state.
type State int

const (
	StateAdvertising State = iota
	StateConnected
)

func (s State) String() string {
	if s == StateConnected {
		return "CONNECTED"
	}
	return "ADVERTISING"
}

// Link is the handle for the single active connection. Done is closed when
// the central disconnects, whether remote-initiated or from link loss.
type Link interface {
	Addr() string
	Done() <-chan struct{}
}

// Advertiser starts one advertising cycle. StartAdvertising returns once
// the broadcast has been issued; the cycle itself runs in the transport.
type Advertiser interface {
	StartAdvertising() error
}

// Subscriptions is the slice of the service the lifecycle manager resets
// when a central goes away.
type Subscriptions interface {
	Unsubscribe()
}

// Manager owns the advertising/connected state machine and the single
// connection handle. The transport reports links as it sees them; the
// manager watches each for disconnect, resets the subscription and
// re-issues the broadcast.
type Manager struct {
	adv  Advertiser
	subs Subscriptions
	log  *logrus.Entry

	mu    sync.Mutex
	state State
	link  Link
}

// NewManager creates a manager in the advertising state.
func NewManager(adv Advertiser, subs Subscriptions, log *logrus.Logger) *Manager {
	return &Manager{
		adv:   adv,
		subs:  subs,
		log:   log.WithField("component", "lifecycle"),
		state: StateAdvertising,
	}
}

// Start issues the boot-time broadcast. A failure here means the radio is
// up but refuses to advertise, which leaves the device unreachable, so it
// is returned to the caller rather than just logged.
func (m *Manager) Start() error {
	if err := m.adv.StartAdvertising(); err != nil {
		return err
	}
	m.log.Info("advertising")
	return nil
}

// Connected records a new link and transitions to CONNECTED. The transport
// guarantees single-connection capacity, so a link reported while one is
// already held is the same connection seen through another handler and is
// ignored.
func (m *Manager) Connected(l Link) {
	m.mu.Lock()
	if m.link != nil {
		m.mu.Unlock()
		return
	}
	m.link = l
	m.state = StateConnected
	m.mu.Unlock()

	m.log.WithField("remote", l.Addr()).Info("central connected")
	go m.watch(l)
}

func (m *Manager) watch(l Link) {
	<-l.Done()

	m.mu.Lock()
	if m.link != l {
		m.mu.Unlock()
		return
	}
	m.link = nil
	m.state = StateAdvertising
	m.mu.Unlock()

	// The subscription belongs to the dead connection; a reconnecting
	// central must subscribe again before it gets notifications.
	m.subs.Unsubscribe()
	m.log.WithField("remote", l.Addr()).Info("central disconnected")

	if err := m.adv.StartAdvertising(); err != nil {
		// Not retried on a timer; the next disconnect or a reboot reissues
		// it. Until then the device is unreachable.
		m.log.WithError(err).Error("advertising restart failed")
		return
	}
	m.log.Info("advertising")
}

// State returns the current lifecycle state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Remote returns the connected central's address, or "" while advertising.
func (m *Manager) Remote() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.link == nil {
		return ""
	}
	return m.link.Addr()
}

// NopAdvertiser satisfies Advertiser where no radio is present (demo mode).
type NopAdvertiser struct{}

func (NopAdvertiser) StartAdvertising() error { return nil }
