package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/go-kit/log"

	"tank-tools/internal/ammo"
	"tank-tools/internal/config"
)

// OpenFunc opens a replay source with a compiled TCP/IP filter
type OpenFunc func(path string, filter *ammo.Filter, logger log.Logger) (ammo.Reader, error)

// OpenHar opens a HAR archive
func OpenHar(path string, filter *ammo.Filter, logger log.Logger) (ammo.Reader, error) {
	r, err := ammo.OpenHar(path, filter, logger)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// OpenPcap opens a pcap capture
func OpenPcap(path string, filter *ammo.Filter, logger log.Logger) (ammo.Reader, error) {
	r, err := ammo.OpenPcap(path, filter, logger)
	if err != nil {
		return nil, err
	}
	return r, nil
}

// ConvertAmmo reads the input of cfg through open and writes ammo to the
// output file, or to stdout when none is set. With StatsOnly only the reader
// stats are printed
func ConvertAmmo(cfg *config.AmmoConfig, open OpenFunc, stdout io.Writer, logger log.Logger) error {
	filter, err := ammo.NewFilter(cfg.Filter)
	if err != nil {
		return err
	}

	reader, err := open(cfg.Input, filter, logger)
	if err != nil {
		filter.Close()
		return err
	}
	defer reader.Close()

	if cfg.StatsOnly {
		stats, err := ammo.Drain(reader)
		if err != nil {
			return err
		}
		_, err = stats.WriteTo(stdout)
		return err
	}

	converter, err := ammo.NewConverter(ammo.ConverterOptions{
		Tag:           cfg.Tag,
		HTTPFilter:    cfg.HTTPFilter,
		AddHeaders:    cfg.AddHeaders,
		DeleteHeaders: cfg.DeleteHeaders,
	}, logger)
	if err != nil {
		return err
	}
	defer converter.Close()

	if cfg.Output == "" {
		_, err = converter.Convert(reader, stdout)
		return err
	}

	f, err := os.Create(cfg.Output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := converter.Convert(reader, w); err != nil {
		return err
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	return f.Close()
}
