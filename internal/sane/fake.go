package sane

import (
	"context"
	"fmt"
	"sync"

	"github.com/scanbd/scanbd/models"
)

// FakeDeviceState is the mutable, test-controlled backing store for one
// FakeDevice. Tests hold a reference to this value to push new option
// values between poll iterations.
type FakeDeviceState struct {
	mu      sync.Mutex
	name    string
	options []models.OptionInfo
	values  map[models.OptionInfo]models.OptionValue
	open    bool

	// ReadErr, when set, is returned by every ReadOption call for the
	// matching option until cleared.
	ReadErr map[models.OptionInfo]error

	// OpenErr, when set, is returned by the next Open call and then
	// cleared.
	OpenErr error

	// ReopenFails, when true, makes every Open after the first Close
	// fail — used to exercise the path where a failed post-fire reopen
	// terminates the worker.
	ReopenFails bool
	closedOnce  bool
}

// NewFakeDeviceState creates device state with the given name and options,
// all initialized to the zero OptionValue of models.KindInt.
func NewFakeDeviceState(name string, options []models.OptionInfo) *FakeDeviceState {
	values := make(map[models.OptionInfo]models.OptionValue, len(options))
	for _, o := range options {
		values[o] = models.Int(0)
	}
	return &FakeDeviceState{
		name:    name,
		options: options,
		values:  values,
	}
}

// Set pushes a new value for opt, visible to the next ReadOption call.
func (s *FakeDeviceState) Set(opt models.OptionInfo, v models.OptionValue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[opt] = v
}

// FakeLibrary is an in-memory Library implementation for tests.
type FakeLibrary struct {
	mu      sync.Mutex
	devices map[string]*FakeDeviceState
}

// NewFakeLibrary creates a library seeded with the given device states.
func NewFakeLibrary(states ...*FakeDeviceState) *FakeLibrary {
	l := &FakeLibrary{devices: make(map[string]*FakeDeviceState)}
	for _, s := range states {
		l.devices[s.name] = s
	}
	return l
}

// Enumerate implements Library.
func (l *FakeLibrary) Enumerate(_ context.Context, _ bool) ([]DeviceInfo, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]DeviceInfo, 0, len(l.devices))
	for name := range l.devices {
		out = append(out, DeviceInfo{Name: name})
	}
	return out, nil
}

// Open implements Library.
func (l *FakeLibrary) Open(_ context.Context, name string) (Device, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	state, ok := l.devices[name]
	if !ok {
		return nil, fmt.Errorf("sane: unknown device %q", name)
	}

	state.mu.Lock()
	defer state.mu.Unlock()

	if state.open {
		return nil, fmt.Errorf("sane: device %q already open", name)
	}
	if state.OpenErr != nil {
		err := state.OpenErr
		state.OpenErr = nil
		return nil, err
	}
	if state.closedOnce && state.ReopenFails {
		return nil, fmt.Errorf("sane: reopen of %q forced to fail", name)
	}
	state.open = true
	return &FakeDevice{state: state}, nil
}

// FakeDevice is the Device returned by FakeLibrary.Open.
type FakeDevice struct {
	state *FakeDeviceState
}

// Name implements Device.
func (d *FakeDevice) Name() string { return d.state.name }

// Options implements Device.
func (d *FakeDevice) Options(_ context.Context) ([]models.OptionInfo, error) {
	return d.state.options, nil
}

// ReadOption implements Device.
func (d *FakeDevice) ReadOption(_ context.Context, opt models.OptionInfo) (models.OptionValue, error) {
	d.state.mu.Lock()
	defer d.state.mu.Unlock()

	if err, ok := d.state.ReadErr[opt]; ok && err != nil {
		return models.OptionValue{}, err
	}
	v, ok := d.state.values[opt]
	if !ok {
		return models.OptionValue{}, fmt.Errorf("sane: unknown option %q on %q", opt.Name, d.state.name)
	}
	return v, nil
}

// Close implements Device.
func (d *FakeDevice) Close() error {
	d.state.mu.Lock()
	defer d.state.mu.Unlock()
	d.state.open = false
	d.state.closedOnce = true
	return nil
}
