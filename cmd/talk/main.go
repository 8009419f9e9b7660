package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/thaivoice/thaivoice-service/audio"
	"github.com/thaivoice/thaivoice-service/config"
	"github.com/thaivoice/thaivoice-service/interfaces"
	"github.com/thaivoice/thaivoice-service/llm"
	logger "github.com/thaivoice/thaivoice-service/log"
	"github.com/thaivoice/thaivoice-service/session"
	"github.com/thaivoice/thaivoice-service/stt"
	"github.com/thaivoice/thaivoice-service/tts"
)

const voicePreamble = "You are a helpful assistant. Always reply in Thai."

// Saying any of these ends the conversation.
var stopWords = map[string]bool{
	"หยุด": true,
	"ออก":  true,
	"จบ":   true,
	"พอ":   true,
	"บาย":  true,
}

func main() {
	wavPath := flag.String("wav", "", "transcribe a WAV file instead of the microphone")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("loading configuration", err)
	}

	ctx := context.Background()
	recognizer, err := stt.New(ctx, cfg.Voice.STTLanguage)
	if err != nil {
		logger.Fatal("creating speech recognizer", err)
	}
	defer recognizer.Close()

	var source audio.Source
	if *wavPath != "" {
		source = &audio.FileSource{Path: *wavPath}
	} else {
		source, err = audio.NewCommandSource(cfg.Voice.CaptureCommand)
		if err != nil {
			logger.Fatal("parsing capture command", err)
		}
	}

	store, err := session.NewStore(cfg.DataDir)
	if err != nil {
		logger.Fatal("preparing session store", err)
	}
	sessionID := session.NewSessionID()

	llmClient := llm.NewClient(cfg.APIURL, cfg.APIKey, cfg.Model)
	synth := tts.NewClient()

	fmt.Println("=== Thai Voice Assistant ===")
	fmt.Println("กด Enter เพื่อเริ่มฟัง, พูดว่า 'หยุด' หรือ 'ออก' เพื่อจบโปรแกรม")

	stdin := bufio.NewReader(os.Stdin)
	for {
		fmt.Print("กด Enter เพื่อเริ่มฟัง… ")
		if _, err := stdin.ReadString('\n'); err != nil {
			break
		}

		heard, err := listen(ctx, recognizer, source)
		if err != nil {
			logger.Error("listening", err)
			continue
		}
		if heard == "" {
			fmt.Println("❌ ไม่เข้าใจเสียงพูดครับ")
			continue
		}
		fmt.Println("🗣 คุณพูดว่า:", heard)

		if stopWords[strings.ToLower(strings.TrimSpace(heard))] {
			fmt.Println("👋 บายครับ")
			say(ctx, synth, cfg, "บายครับ")
			break
		}

		history, err := store.Load(sessionID)
		if err != nil {
			history = nil
		}
		messages := llm.BuildMessages(voicePreamble, toLLMMessages(history), heard)
		reply, ok := llmClient.Complete(ctx, messages)
		fmt.Println("🤖 AI:", reply)
		if ok {
			if err := store.Append(sessionID, heard, reply); err != nil {
				logger.Error("persisting conversation", err)
			}
		}
		say(ctx, synth, cfg, reply)

		// A WAV file holds one utterance; done after the first round.
		if *wavPath != "" {
			break
		}
	}
}

func toLLMMessages(history []session.Message) []llm.Message {
	msgs := make([]llm.Message, len(history))
	for i, m := range history {
		msgs[i] = llm.Message{Role: m.Role, Content: m.Content}
	}
	return msgs
}

// listen captures one utterance and returns its transcript.
func listen(ctx context.Context, recognizer interfaces.SpeechToText, source audio.Source) (string, error) {
	pcm, err := source.Open(ctx)
	if err != nil {
		return "", err
	}
	defer pcm.Close()

	transcripts := make(chan string)
	errs := make(chan error, 1)
	go recognizer.StreamingTranscribe(ctx, pcm, transcripts, errs)

	var heard strings.Builder
	for {
		select {
		case fragment, open := <-transcripts:
			if !open {
				return strings.TrimSpace(heard.String()), nil
			}
			heard.WriteString(fragment)
		case err := <-errs:
			return strings.TrimSpace(heard.String()), err
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
}

// say synthesizes text to a temp MP3 and plays it with the configured player.
// Playback problems are logged, never fatal.
func say(ctx context.Context, synth interfaces.Synthesizer, cfg *config.Config, text string) {
	if strings.TrimSpace(text) == "" {
		return
	}
	mp3, err := synth.Synthesize(ctx, text, cfg.Voice.TTSLanguage)
	if err != nil {
		logger.Error("synthesizing speech", err)
		return
	}

	path := filepath.Join(os.TempDir(), fmt.Sprintf("thaivoice-%d.mp3", os.Getpid()))
	if err := os.WriteFile(path, mp3, 0o600); err != nil {
		logger.Error("writing audio file", err)
		return
	}
	defer os.Remove(path)

	parts := strings.Fields(cfg.Voice.PlayerCommand)
	if len(parts) == 0 {
		logger.Error("playing audio", fmt.Errorf("player command is empty"))
		return
	}
	cmd := exec.CommandContext(ctx, parts[0], append(parts[1:], path)...)
	if err := cmd.Run(); err != nil {
		logger.Error("playing audio", err)
	}
}
