package peripheral

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"ble-rangefinder.klederson.com/internal/config"
	"ble-rangefinder.klederson.com/internal/rangesvc"
	"github.com/go-ble/ble"
	"github.com/go-ble/ble/linux"
	"github.com/sirupsen/logrus"
)

var (
	serviceUUID    = ble.MustParse(config.ServiceUUID)
	rangeCharUUID  = ble.MustParse(config.RangeCharUUID)
	configCharUUID = ble.MustParse(config.ConfigCharUUID)

	batteryServiceUUID = ble.UUID16(0x180F)
	batteryLevelUUID   = ble.UUID16(0x2A19)
)

// ATT "Value Not Allowed" (Core spec Vol 3, Part F, 3.4.1.1). go-ble stops
// naming codes at 0x11.
const errValueNotAllowed = ble.ATTError(0x13)

// BatteryProvider supplies the battery attribute value.
type BatteryProvider interface {
	Level() uint8
}

// Peripheral is the go-ble transport: it registers the GATT surface,
// dispatches remote requests into the Service, and runs advertising cycles
// under the lifecycle manager's control.
type Peripheral struct {
	name    string
	svc     *rangesvc.Service
	battery BatteryProvider
	log     *logrus.Entry

	dev ble.Device
	mgr *Manager

	ctx context.Context // process context; advertising cycles derive from it

	advMu     sync.Mutex
	advCancel context.CancelFunc
}

// New opens the HCI adapter and wires the GATT surface. An adapter that
// cannot be opened is a fatal radio init failure and is returned as such.
func New(name string, adapterID int, svc *rangesvc.Service, battery BatteryProvider, log *logrus.Logger) (*Peripheral, error) {
	dev, err := linux.NewDevice(ble.OptDeviceID(adapterID))
	if err != nil {
		return nil, fmt.Errorf("open hci%d: %w", adapterID, err)
	}
	ble.SetDefaultDevice(dev)

	p := &Peripheral{
		name:    name,
		svc:     svc,
		battery: battery,
		log:     log.WithField("component", "peripheral"),
		dev:     dev,
	}
	p.mgr = NewManager(p, svc, log)

	if err := dev.AddService(p.rangeService()); err != nil {
		return nil, fmt.Errorf("register range service: %w", err)
	}
	if err := dev.AddService(p.batteryService()); err != nil {
		return nil, fmt.Errorf("register battery service: %w", err)
	}
	return p, nil
}

// Links exposes the lifecycle manager.
func (p *Peripheral) Links() *Manager { return p.mgr }

// Serve issues the boot broadcast and keeps the radio up until ctx ends.
func (p *Peripheral) Serve(ctx context.Context) error {
	p.ctx = ctx
	if err := p.mgr.Start(); err != nil {
		return fmt.Errorf("start advertising: %w", err)
	}
	<-ctx.Done()
	p.StopAdvertising()
	return p.dev.Stop()
}

// StartAdvertising begins one advertising cycle, replacing any cycle still
// running. The cycle persists until the process context ends; the HCI layer
// pauses the broadcast while a central is connected.
func (p *Peripheral) StartAdvertising() error {
	p.advMu.Lock()
	defer p.advMu.Unlock()

	if p.advCancel != nil {
		p.advCancel()
	}
	ctx, cancel := context.WithCancel(p.ctx)
	p.advCancel = cancel

	go func() {
		err := ble.AdvertiseNameAndServices(ctx, p.name, serviceUUID)
		if err != nil && ctx.Err() == nil {
			p.log.WithError(err).Warn("advertising cycle ended")
		}
	}()
	return nil
}

// StopAdvertising cancels the running advertising cycle, if any.
func (p *Peripheral) StopAdvertising() {
	p.advMu.Lock()
	defer p.advMu.Unlock()
	if p.advCancel != nil {
		p.advCancel()
		p.advCancel = nil
	}
}

// observe reports the request's connection to the lifecycle manager. Every
// handler calls it, so whichever request arrives first after a connect
// establishes the handle.
func (p *Peripheral) observe(c ble.Conn) {
	if c == nil {
		return
	}
	p.mgr.Connected(bleLink{c})
}

func (p *Peripheral) rangeService() *ble.Service {
	svc := ble.NewService(serviceUUID)

	rangeChar := svc.NewCharacteristic(rangeCharUUID)
	rangeChar.HandleRead(ble.ReadHandlerFunc(func(req ble.Request, rsp ble.ResponseWriter) {
		p.observe(req.Conn())
		var buf [2]byte
		binary.LittleEndian.PutUint16(buf[:], p.svc.RangeMM())
		if _, err := rsp.Write(buf[:]); err != nil {
			p.log.WithError(err).Debug("range read response failed")
		}
	}))
	rangeChar.HandleNotify(ble.NotifyHandlerFunc(func(req ble.Request, n ble.Notifier) {
		p.observe(req.Conn())
		p.svc.Subscribe(n)
		// The handler owns the subscription for as long as the central keeps
		// it; the context ends on CCC disable or disconnect.
		<-n.Context().Done()
		p.svc.Unsubscribe()
	}))

	cfgChar := svc.NewCharacteristic(configCharUUID)
	cfgChar.HandleRead(ble.ReadHandlerFunc(func(req ble.Request, rsp ble.ResponseWriter) {
		p.observe(req.Conn())
		if _, err := rsp.Write(p.svc.Config().Marshal()); err != nil {
			p.log.WithError(err).Debug("config read response failed")
		}
	}))
	cfgChar.HandleWrite(ble.WriteHandlerFunc(func(req ble.Request, rsp ble.ResponseWriter) {
		p.observe(req.Conn())
		rsp.SetStatus(attStatus(p.svc.WriteConfig(req.Data())))
	}))

	return svc
}

func (p *Peripheral) batteryService() *ble.Service {
	svc := ble.NewService(batteryServiceUUID)
	lvl := svc.NewCharacteristic(batteryLevelUUID)
	lvl.HandleRead(ble.ReadHandlerFunc(func(req ble.Request, rsp ble.ResponseWriter) {
		p.observe(req.Conn())
		if _, err := rsp.Write([]byte{p.battery.Level()}); err != nil {
			p.log.WithError(err).Debug("battery read response failed")
		}
	}))
	return svc
}

// attStatus maps a settings write result onto the ATT status returned to
// the writer. Malformed length and out-of-bounds values are distinct
// categories; the record is untouched in both cases.
func attStatus(err error) ble.ATTError {
	switch {
	case err == nil:
		return ble.ErrSuccess
	case errors.Is(err, rangesvc.ErrInvalidLength):
		return ble.ErrInvalAttrValueLen
	case errors.Is(err, rangesvc.ErrValueNotAllowed):
		return errValueNotAllowed
	default:
		return ble.ErrUnlikely
	}
}

type bleLink struct {
	c ble.Conn
}

func (l bleLink) Addr() string          { return l.c.RemoteAddr().String() }
func (l bleLink) Done() <-chan struct{} { return l.c.Disconnected() }
