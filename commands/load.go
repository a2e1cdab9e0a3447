package commands

import (
	"errors"
	"fmt"

	"github.com/penwyp/go-actograph/internal/core/grouping"
	"github.com/penwyp/go-actograph/internal/core/model"
	"github.com/penwyp/go-actograph/internal/core/session"
	"github.com/penwyp/go-actograph/internal/data/parser"
	"github.com/penwyp/go-actograph/internal/util"
)

var (
	errNoReadings = errors.New("--readings is required")
	errNoProtocol = errors.New("--protocol is required")
)

// loadProtocol reads the protocol at path; an empty path yields an empty
// protocol, against which every data reading is dropped
func loadProtocol(path string) (model.Protocol, error) {
	if path == "" {
		return model.Protocol{}, nil
	}
	return parser.ParseProtocolFile(expandPath(path))
}

// observation is an opened readings file bound to a session
type observation struct {
	path    string
	parser  *parser.Parser
	session *session.Session

	// fingerprint of the readings as last read from disk, before any
	// in-session correction
	loaded string
}

func openObservation(readingsPath, protocolPath string) (*observation, error) {
	if readingsPath == "" {
		return nil, errNoReadings
	}

	protocol, err := loadProtocol(protocolPath)
	if err != nil {
		return nil, err
	}

	obs := &observation{
		path:    expandPath(readingsPath),
		parser:  parser.NewParser(cfg.Concurrency),
		session: session.NewSession(protocol),
	}
	obs.session.OnDropped = func(r model.Reading) {
		util.LogDebug("Reading matches no category", util.F("id", r.ID.String()), util.F("name", r.Name))
	}

	if _, err := obs.reload(); err != nil {
		obs.session.Close()
		return nil, err
	}
	return obs, nil
}

// reload re-reads the readings file and reports whether its content changed
// since the last read
func (o *observation) reload() (bool, error) {
	readings, err := o.parser.ParseFile(o.path)
	if err != nil {
		return false, fmt.Errorf("failed to load readings: %w", err)
	}

	fingerprint := util.ReadingsFingerprint(readings)
	if o.loaded != "" && fingerprint == o.loaded {
		return false, nil
	}
	if err := o.session.SetReadings(readings); err != nil {
		return false, err
	}
	o.loaded = fingerprint
	util.LogDebug("Readings loaded", util.F("file", o.path), util.F("count", len(readings)))
	return true, nil
}

// droppedNames lists the distinct names of readings outside the protocol
func (o *observation) droppedNames() ([]string, error) {
	dropped, err := o.session.Dropped()
	if err != nil {
		return nil, err
	}
	return grouping.Result{Dropped: dropped}.DroppedNames(), nil
}

func (o *observation) Close() error {
	return o.session.Close()
}
