package audio

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Source yields one utterance of LINEAR16 PCM audio per Open call.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// CommandSource captures audio by running an external capture command (such
// as arecord) and reading raw PCM from its stdout. The command is expected to
// exit on its own (e.g. a -d duration flag) or when the context is cancelled.
type CommandSource struct {
	Command string
	Args    []string
}

// NewCommandSource parses a whitespace-separated capture command line.
func NewCommandSource(commandLine string) (*CommandSource, error) {
	parts := strings.Fields(commandLine)
	if len(parts) == 0 {
		return nil, fmt.Errorf("capture command is empty")
	}
	return &CommandSource{Command: parts[0], Args: parts[1:]}, nil
}

func (cs *CommandSource) Open(ctx context.Context) (io.ReadCloser, error) {
	cmd := exec.CommandContext(ctx, cs.Command, cs.Args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("could not open capture pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("could not start capture command %s: %w", cs.Command, err)
	}
	return &commandReader{ReadCloser: stdout, cmd: cmd}, nil
}

type commandReader struct {
	io.ReadCloser
	cmd *exec.Cmd
}

func (r *commandReader) Close() error {
	_ = r.ReadCloser.Close()
	// The capture command is killed by pipe closure or context cancellation;
	// its exit status is not interesting.
	_ = r.cmd.Wait()
	return nil
}

// FileSource reads the PCM payload of a WAV file, skipping the header. Useful
// for transcribing pre-recorded audio and for tests.
type FileSource struct {
	Path string
}

func (fs *FileSource) Open(ctx context.Context) (io.ReadCloser, error) {
	f, err := os.Open(fs.Path)
	if err != nil {
		return nil, err
	}
	limit, err := seekToDataChunk(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%s: %w", fs.Path, err)
	}
	return &limitedFile{Reader: io.LimitReader(f, limit), f: f}, nil
}

type limitedFile struct {
	io.Reader
	f *os.File
}

func (lf *limitedFile) Close() error { return lf.f.Close() }

// seekToDataChunk positions f at the start of the WAV "data" chunk and
// returns its size.
func seekToDataChunk(f *os.File) (int64, error) {
	var riff [12]byte
	if _, err := io.ReadFull(f, riff[:]); err != nil {
		return 0, fmt.Errorf("not a WAV file: %w", err)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return 0, fmt.Errorf("not a WAV file")
	}

	var header [8]byte
	for {
		if _, err := io.ReadFull(f, header[:]); err != nil {
			return 0, fmt.Errorf("no data chunk found: %w", err)
		}
		size := int64(binary.LittleEndian.Uint32(header[4:8]))
		if string(header[0:4]) == "data" {
			return size, nil
		}
		// Chunks are word-aligned.
		if size%2 == 1 {
			size++
		}
		if _, err := f.Seek(size, io.SeekCurrent); err != nil {
			return 0, err
		}
	}
}
