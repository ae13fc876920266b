/*
Copyright 2024 The Aazip Authors
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
you may obtain a copy of the License at

                http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/mpetri/aazip"
	"github.com/mpetri/aazip/bitstream"
	"github.com/mpetri/aazip/entropy"
	"github.com/mpetri/aazip/listupdate"
	"github.com/mpetri/aazip/suffix"
)

const (
	_MAGIC0 = 'A'
	_MAGIC1 = 'A'
)

var log = logrus.New()

func main() {
	os.Exit(run(os.Args))
}

// run builds the command line app and executes it, returning the
// process exit code. It never itself calls os.Exit, so it can be
// exercised directly from tests.
func run(args []string) int {
	exitCode := 0

	app := newApp(func(mode listupdate.Mode, input string) {
		exitCode = compress(mode, input)
	})

	if err := app.Run(args); err != nil {
		if ec, ok := err.(cli.ExitCoder); ok {
			return ec.ExitCode()
		}
		return aazip.ErrUsage
	}

	return exitCode
}

// newApp builds the urfave/cli application shared by run and
// processCommandLine. onRun is invoked once argument parsing succeeds
// with exactly one positional input file and a validated -m mode.
func newApp(onRun func(mode listupdate.Mode, input string)) *cli.App {
	return &cli.App{
		Name:  "aazip",
		Usage: "a BWT + list-update + Huffman file compressor",
		Flags: []cli.Flag{
			&cli.GenericFlag{
				Name:     "m",
				Usage:    fmt.Sprintf("list-update algorithm: %s", algorithmList()),
				Required: true,
				Value:    &modeFlag{},
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit("aazip: expected exactly one input file", aazip.ErrUsage)
			}
			mode := c.Generic("m").(*modeFlag).mode
			onRun(mode, c.Args().Get(0))
			return nil
		},
	}
}

// modeFlag adapts listupdate.Mode to cli.Generic so the -m flag is
// validated against the registered algorithm table as part of flag
// parsing, rather than by hand afterwards.
type modeFlag struct {
	mode listupdate.Mode
}

func (f *modeFlag) Set(value string) error {
	mode := listupdate.Mode(value)
	if _, ok := mode.WireCode(); !ok {
		return fmt.Errorf("unknown algorithm %q (want one of %s)", value, algorithmList())
	}
	f.mode = mode
	return nil
}

func (f *modeFlag) String() string {
	if f == nil {
		return ""
	}
	return string(f.mode)
}

func algorithmList() string {
	s := ""
	for i, m := range listupdate.Modes {
		if i > 0 {
			s += ", "
		}
		s += string(m)
	}
	return s
}

// processCommandLine parses argv the same way run's Action does,
// without running the rest of the pipeline. It exists so flag parsing
// and validation can be exercised directly from tests.
func processCommandLine(args []string) (listupdate.Mode, string, int) {
	var mode listupdate.Mode
	var input string

	app := newApp(func(m listupdate.Mode, in string) {
		mode, input = m, in
	})
	app.Writer = io.Discard
	app.ErrWriter = io.Discard
	// Hand exit codes back to the caller instead of letting cli exit
	// the process when the Action returns a cli.Exit error.
	app.ExitErrHandler = func(*cli.Context, error) {}

	if err := app.Run(args); err != nil {
		if ec, ok := err.(cli.ExitCoder); ok {
			code := ec.ExitCode()
			if code == 0 {
				code = aazip.ErrUsage
			}
			return "", "", code
		}
		return "", "", aazip.ErrUsage
	}

	return mode, input, 0
}

// compress reads input whole, runs it through BWT, the chosen
// list-update recoder and the Huffman coder, and writes the result to
// input+".aazip". It returns the process exit code.
func compress(mode listupdate.Mode, input string) int {
	src, err := os.ReadFile(input)
	if err != nil {
		log.WithError(err).Errorf("cannot read %q", input)
		return aazip.ErrReadFile
	}

	outPath := input + ".aazip"
	out, err := os.Create(outPath)
	if err != nil {
		log.WithError(err).Error("cannot create output file")
		return aazip.ErrOpenFile
	}

	start := time.Now()
	stats, err := encodeFile(out, mode, src)
	if err != nil {
		out.Close()
		log.WithError(err).Error("compression failed")
		return aazip.ErrProcess
	}
	elapsed := time.Since(start)

	// encodeFile's bit stream has already closed out, so the size is
	// read back from the file system.
	outSize := int64(0)
	if info, err := os.Stat(outPath); err == nil {
		outSize = info.Size()
	}

	log.WithFields(logrus.Fields{
		"input":       input,
		"output":      outPath,
		"algorithm":   string(mode),
		"bytesIn":     len(src),
		"bytesOut":    outSize,
		"cost":        stats.cost,
		"compression": fmt.Sprintf("%.2f%%", float64(outSize)/float64(len(src))*100),
		"elapsed":     elapsed,
	}).Info("compressed " + input)

	return 0
}

// encodeStats carries the numbers the original tool printed to
// standard output alongside the compressed file: the list-update
// scheme's running cost, used here for the same empirical comparison
// it served in the source this is ported from.
type encodeStats struct {
	cost int
}

// encodeFile writes the full wire format: magic, primary index, lu
// mode, Huffman header, message length and coded stream.
func encodeFile(out *os.File, mode listupdate.Mode, src []byte) (encodeStats, error) {
	params := suffix.DefaultParams()

	bwtOut := make([]byte, len(src))
	bw := suffix.NewBWT(params)

	if _, _, err := bw.Forward(src, bwtOut); err != nil {
		return encodeStats{}, fmt.Errorf("BWT stage failed: %w", err)
	}

	recoded, cost, err := listupdate.Recode(mode, bwtOut)
	if err != nil {
		return encodeStats{}, fmt.Errorf("list-update stage failed: %w", err)
	}

	luCode, _ := mode.WireCode()

	bs, err := bitstream.NewDefaultOutputBitStream(out, 1<<16)
	if err != nil {
		return encodeStats{}, fmt.Errorf("cannot open output bit stream: %w", err)
	}

	bs.WriteBits(_MAGIC0, 8)
	bs.WriteBits(_MAGIC1, 8)
	// The primary index is the one field packed little-endian rather
	// than in the stream's usual big-endian convention.
	writeLE32(bs, uint32(bw.PrimaryIndex()))
	bs.WriteBits(uint64(luCode), 8)

	if err := entropy.Encode(bs, recoded); err != nil {
		return encodeStats{}, fmt.Errorf("entropy stage failed: %w", err)
	}

	if err := bs.Close(); err != nil {
		return encodeStats{}, err
	}

	return encodeStats{cost: cost}, nil
}

// writeLE32 writes v as four bytes, least significant first, matching
// the output format's one departure from its otherwise big-endian
// convention for the primary index field.
func writeLE32(bs aazip.OutputBitStream, v uint32) {
	bs.WriteBits(uint64(v&0xFF), 8)
	bs.WriteBits(uint64((v>>8)&0xFF), 8)
	bs.WriteBits(uint64((v>>16)&0xFF), 8)
	bs.WriteBits(uint64((v>>24)&0xFF), 8)
}
