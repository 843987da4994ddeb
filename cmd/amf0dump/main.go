package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gwuhaolin/amf0kit/configure"
	"github.com/gwuhaolin/amf0kit/container/flv"
	"github.com/gwuhaolin/amf0kit/protocol/amf0"
	"github.com/gwuhaolin/amf0kit/utils/dump"
	"github.com/gwuhaolin/amf0kit/utils/uid"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

func main() {
	c, err := configure.Load(os.Args[1:])
	if err == pflag.ErrHelp {
		return
	}
	if err != nil {
		log.Fatal(err)
	}
	c.InitLog()

	if err := run(c, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(c *configure.Config, w io.Writer) error {
	f, err := os.Open(c.Input)
	if err != nil {
		return err
	}
	defer f.Close()

	abs, err := filepath.Abs(c.Input)
	if err != nil {
		abs = c.Input
	}
	l := log.WithFields(log.Fields{
		"run":    uid.NewID(),
		"source": uid.ForName(abs),
		"input":  c.Input,
	})
	l.Infof("dumping %s input as %s", c.Format, c.Output)

	var n int
	if c.Format == configure.FormatFLV {
		n, err = dumpFLV(l, c, f, w)
	} else {
		n, err = dumpRaw(c, f, w)
	}
	l.WithField("count", n).Info("done")
	return err
}

func dumpRaw(c *configure.Config, r io.Reader, w io.Writer) (int, error) {
	stream := amf0.NewReaderStream[amf0.Value](bufio.NewReader(r))
	n := 0
	for (c.Limit == 0 || n < c.Limit) && stream.Next() {
		if err := dump.Dump(w, c.Output, fmt.Sprintf("value %d", n), stream.Value()); err != nil {
			return n, err
		}
		n++
	}
	return n, stream.Err()
}

func dumpFLV(l *log.Entry, c *configure.Config, r io.Reader, w io.Writer) (int, error) {
	fr := flv.NewReader(bufio.NewReader(r))
	h, err := fr.Header()
	if err != nil {
		return 0, err
	}
	l.WithFields(log.Fields{"audio": h.HasAudio, "video": h.HasVideo}).Debug("flv file")

	n := 0
	for c.Limit == 0 || n < c.Limit {
		tag, err := fr.ReadTag()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, err
		}
		if !tag.IsScript() {
			continue
		}

		s, err := flv.DemuxScriptData(tag.Data)
		if err != nil {
			return n, fmt.Errorf("script tag at %dms: %w", tag.Timestamp, err)
		}
		if m := s.OnMetaData; m != nil {
			logMetaData(l, m)
		}

		body, err := amf0.MetaDataReform(tag.Data, amf0.DEL)
		if err != nil {
			return n, err
		}
		values, err := amf0.UnmarshalAll(body)
		if err != nil {
			return n, err
		}
		label := fmt.Sprintf("%s at %dms", s.Name, tag.Timestamp)
		if err := dump.Dump(w, c.Output, label, amf0.StrictArray(values[1:])); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

func logMetaData(l *log.Entry, m *flv.OnMetaData) {
	fields := log.Fields{}
	if m.AudioCodecID != nil {
		fields["audio"] = m.AudioCodecID.AudioName()
	}
	if m.VideoCodecID != nil {
		fields["video"] = m.VideoCodecID.VideoName()
	}
	if m.Width != nil && m.Height != nil {
		fields["size"] = fmt.Sprintf("%gx%g", *m.Width, *m.Height)
	}
	if m.Duration != nil {
		fields["duration"] = *m.Duration
	}
	l.WithFields(fields).Info("onMetaData")
}
