// Copyright (c) Abstract Machines
// SPDX-License-Identifier: Apache-2.0

// Package rtl433 runs rtl_433 as a child process and exposes its output as
// a weather.Source.
package rtl433

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/absmach/rtlexporter/pkg/errors"
	"github.com/absmach/rtlexporter/weather"
)

const (
	lineBuffer = 64
	diagBuffer = 64
	tailSize   = 20
	// diagGrace bounds how long exit reporting waits for the last
	// diagnostic output once the process is gone.
	diagGrace    = time.Second
	stopWaitTime = 5 * time.Second
	// maxDiagLen caps a single diagnostic line.
	maxDiagLen      = 1024
	truncatedSuffix = "..."
)

var (
	// ErrStart indicates that the process could not be started.
	ErrStart = errors.New("failed to start rtl_433")

	errExitStatusZero = "exit status 0"
)

var _ weather.Source = (*Process)(nil)

// Process is a running rtl_433 instance.
type Process struct {
	cmd         *exec.Cmd
	lines       chan string
	diagnostics chan string
	done        chan struct{}

	mu   sync.Mutex
	tail []string
	err  error
}

// Start launches name with args. Standard output feeds Lines and standard
// error feeds Diagnostics.
func Start(name string, args []string) (*Process, error) {
	outR, outW, err := os.Pipe()
	if err != nil {
		return nil, errors.Wrap(ErrStart, err)
	}
	errR, errW, err := os.Pipe()
	if err != nil {
		closeAll(outR, outW)
		return nil, errors.Wrap(ErrStart, err)
	}

	cmd := exec.Command(name, args...)
	cmd.Stdout = outW
	cmd.Stderr = errW
	detach(cmd)
	if err := cmd.Start(); err != nil {
		closeAll(outR, outW, errR, errW)
		return nil, errors.Wrap(ErrStart, err)
	}
	// The child holds its own copies of the write ends.
	closeAll(outW, errW)

	p := &Process{
		cmd:         cmd,
		lines:       make(chan string, lineBuffer),
		diagnostics: make(chan string, diagBuffer),
		done:        make(chan struct{}),
	}

	diagDone := make(chan struct{})
	go p.readLines(outR)
	go func() {
		defer close(diagDone)
		p.readDiagnostics(errR)
	}()
	go p.wait(diagDone)

	return p, nil
}

// Pid returns the operating system process id.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Lines implements weather.Source.
func (p *Process) Lines() <-chan string {
	return p.lines
}

// Diagnostics implements weather.Source.
func (p *Process) Diagnostics() <-chan string {
	return p.diagnostics
}

// Done implements weather.Source.
func (p *Process) Done() <-chan struct{} {
	return p.done
}

// Err implements weather.Source.
func (p *Process) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.err
}

// Close asks rtl_433 to terminate and kills it if it does not exit in time.
func (p *Process) Close() error {
	select {
	case <-p.done:
		return nil
	default:
	}

	if err := p.cmd.Process.Signal(syscall.SIGTERM); err != nil && err != os.ErrProcessDone {
		return err
	}

	select {
	case <-p.done:
		return nil
	case <-time.After(stopWaitTime):
		if err := p.cmd.Process.Kill(); err != nil && err != os.ErrProcessDone {
			return err
		}
		<-p.done
		return nil
	}
}

func (p *Process) wait(diagDone <-chan struct{}) {
	err := p.cmd.Wait()

	select {
	case <-diagDone:
	case <-time.After(diagGrace):
	}

	p.mu.Lock()
	p.err = p.exitError(err)
	p.mu.Unlock()

	close(p.done)
}

// exitError must be called with p.mu held.
func (p *Process) exitError(err error) error {
	msg := errExitStatusZero
	if err != nil {
		msg = err.Error()
	}
	if len(p.tail) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(p.tail, "; "))
	}
	return errors.New(msg)
}

func (p *Process) readLines(r io.ReadCloser) {
	defer close(p.lines)
	defer r.Close()

	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if line != "" {
			select {
			case p.lines <- strings.TrimRight(line, "\r\n"):
			case <-p.done:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

func (p *Process) readDiagnostics(r io.ReadCloser) {
	defer close(p.diagnostics)
	defer r.Close()

	// stderr is drained to EOF; closing it early would kill rtl_433
	// with SIGPIPE on its next write.
	br := bufio.NewReader(r)
	for {
		line, err := readLine(br, maxDiagLen)
		if line = strings.TrimSpace(line); line != "" {
			p.remember(line)
			select {
			case p.diagnostics <- line:
			default:
			}
		}
		if err != nil {
			return
		}
	}
}

// readLine reads one line of any length and keeps at most limit bytes of it.
func readLine(br *bufio.Reader, limit int) (string, error) {
	var line []byte
	truncated := false
	for {
		chunk, err := br.ReadSlice('\n')
		if room := limit - len(line); len(chunk) > room {
			chunk = chunk[:room]
			truncated = true
		}
		line = append(line, chunk...)
		if err == bufio.ErrBufferFull {
			continue
		}
		if truncated {
			line = append(line, truncatedSuffix...)
		}
		return string(line), err
	}
}

func (p *Process) remember(line string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tail = append(p.tail, line)
	if len(p.tail) > tailSize {
		p.tail = p.tail[len(p.tail)-tailSize:]
	}
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}
