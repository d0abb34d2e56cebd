// SPDX-License-Identifier: EPL-2.0

package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/ik5/audplayer/audio"
	"github.com/ik5/audplayer/midi"
	"github.com/ik5/audplayer/player"
)

var (
	errUsage = errors.New("usage")
	errQuit  = errors.New("quit")
)

// shell executes interactive commands against one engine. Control-change
// commands go through the queue so they are applied by the render step.
type shell struct {
	e   *player.Engine
	q   *midi.Queue
	out io.Writer
}

type command struct {
	usage string
	help  string
	run   func(s *shell, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"open":    {"open <file>", "open a file, stopped at 0", (*shell).open},
		"close":   {"close", "close the file", func(s *shell, _ []string) error { s.e.Close(); return nil }},
		"play":    {"play", "start playback", func(s *shell, _ []string) error { s.e.Play(); return nil }},
		"stop":    {"stop", "stop playback", func(s *shell, _ []string) error { s.e.Stop(); return nil }},
		"seek":    {"seek <seconds>", "move the playback position", (*shell).seek},
		"loop":    {"loop on|off", "toggle looping", (*shell).loop},
		"range":   {"range <start> <end>", "set the loop range in seconds", (*shell).loopRange},
		"track":   {"track a|b <channel|mix>", "select the file channel for an output", (*shell).track},
		"notify":  {"notify <seconds>", "set the position notification step", (*shell).notify},
		"vol":     {"vol <0-2>", "set the output level", (*shell).volume},
		"cc":      {"cc <controller> <value> [channel]", "send a MIDI control change", (*shell).cc},
		"quality": {"quality [best|medium|fastest|zero-order-hold|linear]", "show or set the converter for the next open", (*shell).quality},
		"info":    {"info", "show the open file and transport state", (*shell).info},
		"tag":     {"tag <key> [file]", "show a metadata tag", (*shell).tag},
		"probe":   {"probe <file>", "show a file's duration without opening it", (*shell).probe},
		"stats":   {"stats", "show engine counters", (*shell).stats},
		"debug":   {"debug on|off", "toggle verbose logging", (*shell).debug},
		"help":    {"help", "list commands", (*shell).help},
		"quit":    {"quit", "exit", func(*shell, []string) error { return errQuit }},
	}
}

// exec runs one command line. It returns errQuit when the shell should exit.
func (s *shell) exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	name := strings.ToLower(fields[0])
	if name == "exit" {
		name = "quit"
	}
	cmd, ok := commands[name]
	if !ok {
		return fmt.Errorf("unknown command %q, try help", fields[0])
	}

	err := cmd.run(s, fields[1:])
	if errors.Is(err, errUsage) {
		return fmt.Errorf("%w: %s", errUsage, cmd.usage)
	}
	return err
}

func (s *shell) open(args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	path := strings.Join(args, " ")
	if err := s.e.Open(path); err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s: %s, %d Hz, %d ch, %.2fs\n",
		filepath.Base(path), s.e.Format(), s.e.SampleRate(), s.e.Channels(), s.e.Duration())
	return nil
}

func (s *shell) seek(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	sec, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return errUsage
	}
	s.e.SetPosition(sec)
	return nil
}

func parseSwitch(args []string) (bool, error) {
	if len(args) != 1 {
		return false, errUsage
	}
	switch strings.ToLower(args[0]) {
	case "on", "1", "true":
		return true, nil
	case "off", "0", "false":
		return false, nil
	}
	return false, errUsage
}

func (s *shell) loop(args []string) error {
	on, err := parseSwitch(args)
	if err != nil {
		return err
	}
	s.e.SetLoop(on)
	return nil
}

func (s *shell) loopRange(args []string) error {
	if len(args) != 2 {
		return errUsage
	}
	start, err := strconv.ParseFloat(args[0], 64)
	if err != nil {
		return errUsage
	}
	end, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return errUsage
	}

	rejected := fmt.Errorf("loop range %v-%v rejected, file is %.3f s", start, end, s.e.Duration())
	if start >= end || end > s.e.Duration() {
		return rejected
	}

	// Move the bound that keeps the range valid at every step first.
	var ok bool
	if start < s.e.LoopEnd() {
		ok = s.e.SetLoopStart(start) && s.e.SetLoopEnd(end)
	} else {
		ok = s.e.SetLoopEnd(end) && s.e.SetLoopStart(start)
	}
	if !ok {
		return rejected
	}
	return nil
}

func (s *shell) track(args []string) error {
	if len(args) != 2 {
		return errUsage
	}

	ch := player.TrackMix
	if args[1] != "mix" {
		n, err := strconv.Atoi(args[1])
		if err != nil {
			return errUsage
		}
		ch = n
	}

	var ok bool
	switch strings.ToLower(args[0]) {
	case "a":
		ok = s.e.SetTrackA(ch)
	case "b":
		ok = s.e.SetTrackB(ch)
	default:
		return errUsage
	}
	if !ok {
		return fmt.Errorf("track %s rejected for %d channels", args[1], s.e.Channels())
	}
	return nil
}

func (s *shell) notify(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	sec, err := strconv.ParseFloat(args[0], 64)
	if err != nil || !s.e.SetPositionNotifyDelta(sec) {
		return errUsage
	}
	return nil
}

func (s *shell) volume(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	v, err := strconv.ParseFloat(args[0], 32)
	if err != nil {
		return errUsage
	}
	if !s.e.SetVolume(float32(v)) {
		return fmt.Errorf("volume %v out of range [0, %v]", v, player.MaxVolume)
	}
	return nil
}

func (s *shell) cc(args []string) error {
	if len(args) < 2 || len(args) > 3 {
		return errUsage
	}
	vals := make([]byte, 3)
	for i, a := range args {
		n, err := strconv.ParseUint(a, 10, 8)
		if err != nil || n > 127 {
			return errUsage
		}
		vals[i] = byte(n)
	}
	if vals[2] > 15 {
		return errUsage
	}

	if !s.q.Push(midi.ControlChange(vals[2], vals[0], vals[1])) {
		return errors.New("control queue full")
	}
	return nil
}

func (s *shell) quality(args []string) error {
	switch len(args) {
	case 0:
		fmt.Fprintln(s.out, s.e.ConversionQuality())
		return nil
	case 1:
		q, err := audio.ParseQuality(args[0])
		if err != nil {
			return errUsage
		}
		s.e.SetConversionQuality(q)
		return nil
	}
	return errUsage
}

func (s *shell) info(_ []string) error {
	if !s.e.IsOpen() {
		fmt.Fprintln(s.out, "no file open")
	} else {
		fmt.Fprintf(s.out, "file:     %s\n", s.e.Filename())
		fmt.Fprintf(s.out, "format:   %s, %d Hz, %d ch, %d frames\n",
			s.e.Format(), s.e.SampleRate(), s.e.Channels(), s.e.Frames())
		fmt.Fprintf(s.out, "position: %.3f / %.3f s\n", s.e.Position(), s.e.Duration())
		fmt.Fprintf(s.out, "range:    %.3f - %.3f s  tracks: %s/%s\n",
			s.e.LoopStart(), s.e.LoopEnd(), trackName(s.e.TrackA()), trackName(s.e.TrackB()))
	}
	fmt.Fprintf(s.out, "state:    %s (seek %s)\n", s.e.PlayState(), s.e.SeekState())
	fmt.Fprintf(s.out, "volume:   %.2f  loop: %v  quality: %s\n", s.e.Volume(), s.e.Loop(), s.e.ConversionQuality())
	return nil
}

func trackName(ch int) string {
	if ch == player.TrackMix {
		return "mix"
	}
	return strconv.Itoa(ch)
}

func (s *shell) tag(args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	path := s.e.Filename()
	if len(args) > 1 {
		path = strings.Join(args[1:], " ")
	}
	if path == "" {
		return errors.New("no file open")
	}
	fmt.Fprintln(s.out, s.e.FileInfo(path, strings.ToLower(args[0])))
	return nil
}

func (s *shell) probe(args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	fmt.Fprintf(s.out, "%.3f s\n", s.e.FileDuration(strings.Join(args, " ")))
	return nil
}

func (s *shell) stats(_ []string) error {
	st := s.e.Stats()
	fmt.Fprintf(s.out, "periods %d  frames %d  xruns %d  fills %d  seeks %d  loops %d  errors %d  cc dropped %d\n",
		st.Periods, st.Frames, st.Xruns, st.Fills, st.Seeks, st.Loops, st.Errors, s.q.Dropped())
	return nil
}

func (s *shell) debug(args []string) error {
	on, err := parseSwitch(args)
	if err != nil {
		return err
	}
	s.e.SetDebug(on)
	return nil
}

func (s *shell) help(_ []string) error {
	names := make([]string, 0, len(commands))
	for n := range commands {
		names = append(names, n)
	}
	slices.Sort(names)
	for _, n := range names {
		fmt.Fprintf(s.out, "  %-50s %s\n", commands[n].usage, commands[n].help)
	}
	return nil
}

// completer offers command names, and file paths after open, tag and probe.
func completer() *readline.PrefixCompleter {
	files := readline.PcItemDynamic(listFiles)

	items := make([]readline.PrefixCompleterInterface, 0, len(commands))
	for name := range commands {
		switch name {
		case "open", "probe":
			items = append(items, readline.PcItem(name, files))
		default:
			items = append(items, readline.PcItem(name))
		}
	}
	return readline.NewPrefixCompleter(items...)
}

// listFiles completes the last word of line as a path.
func listFiles(line string) []string {
	fields := strings.Fields(line)
	prefix := ""
	if len(fields) > 1 && !strings.HasSuffix(line, " ") {
		prefix = fields[len(fields)-1]
	}

	dir := filepath.Dir(prefix)
	if prefix == "" || strings.HasSuffix(prefix, string(filepath.Separator)) {
		dir = prefix
	}
	if dir == "" {
		dir = "."
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	out := make([]string, 0, len(entries))
	for _, e := range entries {
		p := e.Name()
		if dir != "." {
			p = filepath.Join(dir, p)
		}
		if e.IsDir() {
			p += string(filepath.Separator)
		}
		out = append(out, p)
	}
	return out
}
