package scanner

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"ble-rangefinder.klederson.com/internal/config"
	"tinygo.org/x/bluetooth"
)

// Result is one advertiser seen during a verification scan.
type Result struct {
	MAC   string
	Name  string
	RSSI  int16
	Match bool // carries the range service UUID or the device name
}

// Scan listens for advertisements for the given timeout and reports every
// distinct advertiser, flagging the rangefinder if it shows up. Used after
// deployment to confirm the peripheral is actually discoverable.
func Scan(ctx context.Context, deviceName string, timeout time.Duration) ([]Result, error) {
	adapter := bluetooth.DefaultAdapter
	if err := adapter.Enable(); err != nil {
		return nil, fmt.Errorf("failed to enable BLE adapter: %w (try running with sudo or setcap cap_net_admin+ep)", err)
	}

	svcUUID, err := bluetooth.ParseUUID(config.ServiceUUID)
	if err != nil {
		return nil, fmt.Errorf("parse service uuid: %w", err)
	}

	var (
		mu   sync.Mutex
		seen = make(map[string]Result)
	)

	scanErr := make(chan error, 1)
	go func() {
		scanErr <- adapter.Scan(func(a *bluetooth.Adapter, r bluetooth.ScanResult) {
			res := Result{
				MAC:   r.Address.String(),
				Name:  r.LocalName(),
				RSSI:  r.RSSI,
				Match: r.HasServiceUUID(svcUUID) || (deviceName != "" && r.LocalName() == deviceName),
			}
			mu.Lock()
			// Keep the richer record when the same advertiser repeats.
			if prev, ok := seen[res.MAC]; ok && res.Name == "" {
				res.Name = prev.Name
				res.Match = res.Match || prev.Match
			}
			seen[res.MAC] = res
			mu.Unlock()
		})
	}()

	select {
	case <-ctx.Done():
	case <-time.After(timeout):
	case err := <-scanErr:
		if err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
	}
	_ = adapter.StopScan()

	mu.Lock()
	defer mu.Unlock()
	out := make([]Result, 0, len(seen))
	for _, r := range seen {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Match != out[j].Match {
			return out[i].Match
		}
		return out[i].RSSI > out[j].RSSI
	})
	return out, nil
}
