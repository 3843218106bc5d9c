package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/dominant-strategies/eth-light-client/lightclient"
	"github.com/dominant-strategies/eth-light-client/log"
)

// openInput opens the named file, or stdin for "-".
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func readJSON(path string, v interface{}) error {
	r, err := openInput(path)
	if err != nil {
		return err
	}
	defer r.Close()
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// logSink reports the light client events in the log.
type logSink struct {
	logger log.Logger
}

func (s logSink) Publish(ev lightclient.Event) {
	switch ev := ev.(type) {
	case lightclient.SetGenesisHeaderEvent:
		s.logger.WithFields(log.Fields{"number": ev.Header.Number, "hash": ev.Header.Hash()}).Info("Event: genesis header set")
	case lightclient.UpdateBestNumberEvent:
		s.logger.WithField("number", ev.Number).Info("Event: authority best number updated")
	case lightclient.MaintainEvent:
		s.logger.WithFields(log.Fields{"caller": ev.Caller, "number": ev.Header.Number, "td": ev.Tip.TotalDifficulty}).Info("Event: header appended")
	}
}
