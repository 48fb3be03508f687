// Package doctor runs interactive end-to-end checks of the capture,
// transcription and synthesis paths.
package doctor

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vishnuarumugam/voiceCapture/audio"
	"github.com/vishnuarumugam/voiceCapture/encoder"
	"github.com/vishnuarumugam/voiceCapture/log"
	"github.com/vishnuarumugam/voiceCapture/synth"
	"github.com/vishnuarumugam/voiceCapture/transcriber"
)

// Run executes interactive diagnostic checks and returns an exit code
// (0=all pass, 1=any fail).
func Run() int {
	resetTerminal()
	setupInterruptHandler()

	fmt.Println("voicecapture doctor - interactive system diagnostics")
	fmt.Println("====================================================")

	allPass := true

	if !checkLogDir() {
		allPass = false
	}
	var pcm []byte
	if allPass {
		var ok bool
		pcm, ok = checkMicrophone()
		if !ok {
			allPass = false
		}
	}
	if allPass && !checkTranscription(pcm) {
		allPass = false
	}
	if !checkSynthesis() {
		allPass = false
	}

	fmt.Println()
	if allPass {
		fmt.Println("All checks passed!")
		return 0
	}
	fmt.Println("Some checks failed. See details above.")
	return 1
}

func checkLogDir() bool {
	fmt.Println()
	fmt.Println("[1/4] Log directory")

	dir, err := log.ResolveDir("")
	if err != nil {
		fmt.Printf("  FAIL: cannot resolve log directory: %v\n", err)
		return false
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		fmt.Printf("  FAIL: cannot create %s: %v\n", dir, err)
		return false
	}
	probe := filepath.Join(dir, ".doctor_probe")
	if err := os.WriteFile(probe, []byte("ok"), 0644); err != nil {
		fmt.Printf("  FAIL: %s not writable: %v\n", dir, err)
		return false
	}
	os.Remove(probe)
	fmt.Printf("  PASS: %s\n", dir)
	return true
}

func checkMicrophone() ([]byte, bool) {
	fmt.Println()
	fmt.Println("[2/4] Microphone capture")

	ctx, err := audio.NewContext()
	if err != nil {
		fmt.Printf("  FAIL: cannot connect to audio: %v\n", err)
		return nil, false
	}
	defer ctx.Close()

	devices, err := ctx.Devices()
	if err != nil {
		fmt.Printf("  FAIL: cannot list devices: %v\n", err)
		return nil, false
	}
	if len(devices) == 0 {
		fmt.Println("  FAIL: no capture devices found")
		return nil, false
	}

	reader := bufio.NewReader(os.Stdin)
	var device *audio.DeviceInfo
	if len(devices) == 1 {
		device = &devices[0]
		fmt.Printf("Using device: %s\n", device.Name)
	} else {
		fmt.Println()
		fmt.Println("Select input device:")
		for i, d := range devices {
			fmt.Printf("  %d. %s\n", i+1, d.Name)
		}
		fmt.Printf("Choice [1-%d]: ", len(devices))

		devChoice, _ := reader.ReadString('\n')
		devChoice = strings.TrimSpace(devChoice)
		idx := 0
		if devChoice != "" {
			fmt.Sscanf(devChoice, "%d", &idx)
			idx--
		}
		if idx < 0 || idx >= len(devices) {
			fmt.Println("  FAIL: invalid choice")
			return nil, false
		}
		device = &devices[idx]
		fmt.Printf("Selected: %s\n", device.Name)
	}

	fmt.Println()
	fmt.Print("Press Enter and speak for 3 seconds...")
	reader.ReadString('\n')

	stop := make(chan struct{})
	go func() {
		time.Sleep(3 * time.Second)
		close(stop)
	}()

	pcm, err := recordAudio(ctx, device, stop)
	if err != nil {
		fmt.Printf("  FAIL: recording error: %v\n", err)
		return nil, false
	}
	if len(pcm) == 0 {
		fmt.Println("  FAIL: no audio captured")
		return nil, false
	}

	var peak int16
	for i := 0; i+1 < len(pcm); i += 2 {
		s := int16(binary.LittleEndian.Uint16(pcm[i:]))
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	fmt.Printf("  PASS: captured %.1f KB, peak level %.0f%%\n",
		float64(len(pcm))/1024, float64(peak)/327.67)
	if peak < 500 {
		fmt.Println("  Warning: very low level, check microphone gain")
	}
	return pcm, true
}

func checkTranscription(pcm []byte) bool {
	fmt.Println()
	fmt.Println("[3/4] Transcription")

	stt, err := transcriber.New()
	if err != nil {
		fmt.Printf("  FAIL: %v\n", err)
		return false
	}

	path, err := writeArtifact(pcm)
	if err != nil {
		fmt.Printf("  FAIL: encoding recording: %v\n", err)
		return false
	}

	fmt.Printf("  Transcribing with %s...\n", stt.Name())
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	result, err := stt.Transcribe(ctx, audio.RecordingHandle{Path: path, StartedAt: time.Now()})
	if err != nil {
		fmt.Printf("  FAIL: transcription error: %v\n", err)
		return false
	}

	text := strings.TrimSpace(result.Text)
	if text == "" {
		text = "(no speech detected)"
	}
	fmt.Printf("\n  Transcribed text: %s\n\n", text)

	confirmReader := bufio.NewReader(os.Stdin)
	fmt.Print("Is this correct? [y/n]: ")
	confirm, _ := confirmReader.ReadString('\n')
	confirm = strings.TrimSpace(strings.ToLower(confirm))

	if confirm == "y" || confirm == "yes" {
		fmt.Println("  PASS: transcription verified by user")
		return true
	}
	fmt.Println("  FAIL: transcription not confirmed")
	return false
}

func checkSynthesis() bool {
	fmt.Println()
	fmt.Println("[4/4] Speech synthesis")

	key := os.Getenv("DEEPGRAM_API_KEY")
	if key == "" {
		fmt.Println("  SKIP: DEEPGRAM_API_KEY not set, replies will not be spoken")
		return true
	}

	player, err := synth.NewPlayer()
	if err != nil {
		fmt.Printf("  FAIL: cannot open playback device: %v\n", err)
		return false
	}

	done := make(chan struct{})
	tts := synth.NewDeepgram(key, player, synth.Config{})
	if err := tts.Speak("voicecapture diagnostics check", func() { close(done) }); err != nil {
		fmt.Printf("  FAIL: synthesis error: %v\n", err)
		return false
	}
	select {
	case <-done:
	case <-time.After(20 * time.Second):
		fmt.Println("  FAIL: synthesis never completed")
		return false
	}

	confirmReader := bufio.NewReader(os.Stdin)
	fmt.Print("Did you hear the spoken phrase? [y/n]: ")
	confirm, _ := confirmReader.ReadString('\n')
	confirm = strings.TrimSpace(strings.ToLower(confirm))

	if confirm == "y" || confirm == "yes" {
		fmt.Println("  PASS: synthesis verified by user")
		return true
	}
	fmt.Println("  FAIL: synthesis not confirmed")
	return false
}

// writeArtifact encodes raw PCM16 to a temp wav file, the same container the
// recorder produces.
func writeArtifact(pcm []byte) (string, error) {
	enc, err := encoder.New("wav")
	if err != nil {
		return "", err
	}
	samples := make([]int16, len(pcm)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(pcm[i*2:]))
	}
	for off := 0; off < len(samples); off += encoder.BlockSize {
		end := off + encoder.BlockSize
		if end > len(samples) {
			end = len(samples)
		}
		if err := enc.EncodeBlock(samples[off:end]); err != nil {
			return "", err
		}
	}
	if err := enc.Close(); err != nil {
		return "", err
	}
	path := filepath.Join(os.TempDir(), fmt.Sprintf("doctor-%d.wav", time.Now().UnixNano()))
	return path, os.WriteFile(path, enc.Bytes(), 0600)
}

func recordAudio(ctx audio.Context, device *audio.DeviceInfo, stop <-chan struct{}) ([]byte, error) {
	var pcmBuf []byte
	var bufMu sync.Mutex
	done := make(chan struct{})

	config := audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	}

	captureDevice, err := ctx.NewCapture(device, config)
	if err != nil {
		return nil, err
	}
	defer captureDevice.Close()

	captureDevice.SetCallback(func(data []byte, frameCount uint32) {
		bufMu.Lock()
		pcmBuf = append(pcmBuf, data...)
		bufMu.Unlock()
	})

	if err := captureDevice.Start(); err != nil {
		return nil, err
	}

	fmt.Print("  Recording")
	ticker := time.NewTicker(500 * time.Millisecond)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fmt.Print(".")
			}
		}
	}()

	<-stop
	close(done)

	captureDevice.Stop()
	captureDevice.ClearCallback()
	fmt.Println(" done")

	bufMu.Lock()
	raw := pcmBuf
	bufMu.Unlock()
	return raw, nil
}
