//go:build linux

package wakelock

import (
	"context"
	"fmt"
	"time"

	"github.com/godbus/dbus/v5"
)

const (
	screenSaverService   = "org.freedesktop.ScreenSaver"
	screenSaverPath      = "/org/freedesktop/ScreenSaver"
	screenSaverInterface = "org.freedesktop.ScreenSaver"

	callTimeout = 2 * time.Second
)

type dbusInhibitor struct {
	conn    *dbus.Conn
	appName string
}

// NewInhibitor connects to the session bus screen saver service.
func NewInhibitor(appName string) (Inhibitor, error) {
	conn, err := dbus.ConnectSessionBus()
	if err != nil {
		return nil, fmt.Errorf("%w: session bus: %v", ErrUnsupported, err)
	}
	return &dbusInhibitor{conn: conn, appName: appName}, nil
}

func (d *dbusInhibitor) Inhibit(reason string) (uint32, error) {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	var cookie uint32
	obj := d.conn.Object(screenSaverService, dbus.ObjectPath(screenSaverPath))
	err := obj.CallWithContext(ctx, screenSaverInterface+".Inhibit", 0, d.appName, reason).Store(&cookie)
	if err != nil {
		var dbusErr dbus.Error
		if asDBusError(err, &dbusErr) && dbusErr.Name == "org.freedesktop.DBus.Error.ServiceUnknown" {
			return 0, fmt.Errorf("%w: %s not running", ErrUnsupported, screenSaverService)
		}
		return 0, fmt.Errorf("inhibit: %w", err)
	}
	return cookie, nil
}

func (d *dbusInhibitor) Uninhibit(cookie uint32) error {
	ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
	defer cancel()

	obj := d.conn.Object(screenSaverService, dbus.ObjectPath(screenSaverPath))
	if call := obj.CallWithContext(ctx, screenSaverInterface+".UnInhibit", 0, cookie); call.Err != nil {
		return fmt.Errorf("uninhibit: %w", call.Err)
	}
	return nil
}

func (d *dbusInhibitor) Close() error {
	return d.conn.Close()
}

func asDBusError(err error, target *dbus.Error) bool {
	switch e := err.(type) {
	case dbus.Error:
		*target = e
		return true
	case *dbus.Error:
		*target = *e
		return true
	}
	return false
}
