package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/vishnuarumugam/voiceCapture/audio"
	"github.com/vishnuarumugam/voiceCapture/beep"
	"github.com/vishnuarumugam/voiceCapture/config"
	"github.com/vishnuarumugam/voiceCapture/conversation"
	"github.com/vishnuarumugam/voiceCapture/doctor"
	"github.com/vishnuarumugam/voiceCapture/encoder"
	"github.com/vishnuarumugam/voiceCapture/hotkey"
	"github.com/vishnuarumugam/voiceCapture/log"
	"github.com/vishnuarumugam/voiceCapture/recognizer"
	"github.com/vishnuarumugam/voiceCapture/reply"
	"github.com/vishnuarumugam/voiceCapture/shutdown"
	"github.com/vishnuarumugam/voiceCapture/synth"
	"github.com/vishnuarumugam/voiceCapture/transcriber"
	"github.com/vishnuarumugam/voiceCapture/update"
)

// Set via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	langFlag := flag.String("lang", "", "transcription language code (e.g. en, de)")
	formatFlag := flag.String("format", "", "recording format: wav or flac")
	voiceFlag := flag.String("voice", "", "synthesis voice model")
	cooldownFlag := flag.Duration("cooldown", 0, "pause after bot speech before re-listening")
	pauseFlag := flag.Duration("pause", 0, "silence that ends an utterance in a call")
	deviceFlag := flag.String("device", "", "microphone name substring")
	setupFlag := flag.Bool("setup", false, "interactively pick a microphone")
	logPathFlag := flag.String("logpath", "", "log directory (default: OS-specific)")
	noBeepFlag := flag.Bool("nobeep", false, "disable audible cues")
	doctorFlag := flag.Bool("doctor", false, "run interactive diagnostics and exit")
	updateFlag := flag.Bool("update", false, "update to the latest release and exit")
	versionFlag := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Println("voicecapture", version)
		return 0
	}
	if *doctorFlag {
		return doctor.Run()
	}
	if *updateFlag {
		return runUpdate()
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		return 1
	}
	if *langFlag != "" {
		cfg.Language = *langFlag
	}
	if *formatFlag != "" {
		cfg.Format = *formatFlag
	}
	if *voiceFlag != "" {
		cfg.Voice = *voiceFlag
	}
	if *cooldownFlag > 0 {
		cfg.Cooldown = *cooldownFlag
	}
	if *pauseFlag > 0 {
		cfg.PauseThreshold = *pauseFlag
	}
	if cfg.Format != "wav" && cfg.Format != "flac" {
		fmt.Fprintf(os.Stderr, "unsupported format %q (want wav or flac)\n", cfg.Format)
		return 1
	}

	logDir, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "resolving log dir:", err)
		return 1
	}
	log.SetDir(logDir)
	if err := log.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "initializing logs:", err)
		return 1
	}
	defer log.Close()

	actx, err := audio.NewContext()
	if err != nil {
		fmt.Fprintln(os.Stderr, "audio backend:", err)
		return 1
	}
	defer actx.Close()

	device, err := pickDevice(actx, *deviceFlag, *setupFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	capture, err := actx.NewCapture(device, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, "opening microphone:", err)
		return 1
	}
	defer capture.Close()

	if audio.IsBluetooth(capture.DeviceName()) {
		log.Warnf("bluetooth microphone %q: expect reduced capture quality", capture.DeviceName())
	}

	if *noBeepFlag {
		beep.Disable()
	}
	beep.Init()

	recorder := audio.NewRecorder(capture, cfg.Format, os.TempDir())

	stt, err := transcriber.New()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	stt.SetLanguage(cfg.Language)

	listener := recognizer.NewDeepgram(cfg.DeepgramAPIKey, capture, recognizer.Options{
		Language:       cfg.Language,
		PauseThreshold: cfg.PauseThreshold,
	})

	tts, synthName, err := newSynthesizer(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	sink := &teaSink{}
	ctl := conversation.New(
		conversation.Config{Cooldown: cfg.Cooldown},
		recorder, stt, listener, tts, reply.Echo, sink,
	)

	log.SessionStart(stt.Name(), synthName, cfg.Format)
	log.Infof("device=%q lang=%s pause=%s cooldown=%s", capture.DeviceName(), cfg.Language, cfg.PauseThreshold, cfg.Cooldown)

	providerLine := fmt.Sprintf("[%s | %s | %s]", stt.Name(), strings.ToUpper(cfg.Format), synthName)
	p := NewTUIProgram(ctl, "mic: "+capture.DeviceName(), providerLine)
	sink.attach(p)

	// Global push-to-talk: tap toggles, hold records while held. Best
	// effort; some environments refuse global key grabs.
	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		log.Warnf("global hotkey unavailable: %v", err)
	} else {
		defer hk.Unregister()
		hyb := hotkey.NewHybrid(hk, 400*time.Millisecond)
		go func() {
			for {
				select {
				case <-hyb.Start():
					ctl.Toggle()
				case <-hyb.StopChan():
					ctl.Toggle()
				}
			}
		}()
	}

	sig := make(chan os.Signal, 1)
	shutdown.Notify(sig)
	go func() {
		<-sig
		p.Quit()
	}()

	update.StartBackgroundCheck(version, log.Dir(), func(rel update.Release) {
		p.Send(UpdateMsg{Version: rel.Version})
	})

	final, err := p.Run()
	ctl.EndCall()
	tts.Stop()

	if m, ok := final.(tuiModel); ok {
		log.SessionEnd(m.transcriptions, m.turns)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "tui:", err)
		return 1
	}
	return 0
}

func runUpdate() int {
	rel, err := update.CheckLatest(version)
	if err != nil {
		fmt.Fprintln(os.Stderr, "checking for updates:", err)
		return 1
	}
	if rel == nil {
		fmt.Println("already up to date")
		return 0
	}
	fmt.Printf("updating %s -> %s\n", version, rel.Version)
	if err := update.Apply(rel); err != nil {
		fmt.Fprintln(os.Stderr, "applying update:", err)
		return 1
	}
	fmt.Println("updated; restart to use the new version")
	return 0
}

func pickDevice(actx audio.Context, name string, setup bool) (*audio.DeviceInfo, error) {
	if setup {
		return audio.SelectDevice(actx)
	}
	if name == "" {
		return nil, nil // backend default
	}
	devices, err := actx.Devices()
	if err != nil {
		return nil, fmt.Errorf("enumerating devices: %w", err)
	}
	for i := range devices {
		if strings.Contains(strings.ToLower(devices[i].Name), strings.ToLower(name)) {
			return &devices[i], nil
		}
	}
	return nil, fmt.Errorf("no microphone matching %q", name)
}

// newSynthesizer falls back to a silent synthesizer when no speech API key
// is configured, keeping the call loop usable for transcription-only runs.
func newSynthesizer(cfg config.Config) (conversation.Synthesizer, string, error) {
	if cfg.DeepgramAPIKey == "" {
		log.Warn("DEEPGRAM_API_KEY not set: replies will not be spoken")
		return synth.NewNoop(), "silent", nil
	}
	player, err := synth.NewPlayer()
	if err != nil {
		return nil, "", fmt.Errorf("opening playback device: %w", err)
	}
	return synth.NewDeepgram(cfg.DeepgramAPIKey, player, synth.Config{
		Voice:    cfg.Voice,
		Rate:     cfg.SpeechRate,
		Pitch:    cfg.Pitch,
		Language: cfg.Language,
	}), cfg.Voice, nil
}
