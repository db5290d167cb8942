package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"math"
	"net/http"
	_ "net/http/pprof"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"murmur/audio"
	"murmur/beep"
	"murmur/capture"
	"murmur/clipboard"
	"murmur/control"
	"murmur/doctor"
	"murmur/encoder"
	"murmur/hotkey"
	"murmur/indicator"
	"murmur/log"
	"murmur/save"
	"murmur/shutdown"
	"murmur/transcriber"
	"murmur/tray"
)

var version = "dev"

var (
	shutdownOnce    sync.Once
	transcriptCount atomic.Int64
)

func gracefulShutdown() {
	shutdownOnce.Do(func() {
		if n := transcriptCount.Load(); n > 0 {
			log.SessionEnd(int(n))
		}
		log.Close()
		tray.Quit()
		tuiMu.Lock()
		p := tuiProgram
		tuiMu.Unlock()
		if p != nil {
			p.Quit()
		}
		os.Exit(0)
	})
}

func deviceLineText(dev *audio.DeviceInfo) string {
	name := "system default"
	suffix := ""
	if dev != nil {
		name = dev.Name
		if audio.IsBluetooth(dev.Name) {
			suffix = " (BT!)"
		}
	}
	return "mic: " + name + suffix
}

func run() {
	autoPasteFlag := flag.Bool("autopaste", true, "Auto-paste to focused window after transcription")
	setupFlag := flag.Bool("setup", false, "Select microphone device (otherwise uses system default)")
	deviceFlag := flag.String("device", "", "Use named microphone device")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	doctorFlag := flag.Bool("doctor", false, "Run system diagnostics and exit")
	expertFlag := flag.Bool("expert", false, "Enable diagnostic logging in TUI mode")
	langFlag := flag.String("lang", "en", "Language code for transcription (e.g., en, es, fr). Empty = auto-detect")
	crashFlag := flag.Bool("crash", false, "Trigger synthetic panic for testing crash logging")
	logPathFlag := flag.String("logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	profileFlag := flag.String("profile", "", "Enable pprof profiling server (e.g., :6060 or localhost:6060)")
	tuiFlag := flag.Bool("tui", true, "Run with terminal UI")
	noBeepFlag := flag.Bool("nobeep", false, "Disable audio cues")
	flag.Parse()

	if *noBeepFlag {
		beep.Disable()
	}

	// Resolve log directory early
	logPath, err := log.ResolveDir(*logPathFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to resolve log directory: %v\n", err)
		os.Exit(1)
	}
	log.SetDir(logPath)
	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if *profileFlag != "" {
		go func() {
			fmt.Fprintf(os.Stderr, "pprof server listening on http://%s/debug/pprof/\n", *profileFlag)
			if err := http.ListenAndServe(*profileFlag, nil); err != nil {
				fmt.Fprintf(os.Stderr, "pprof server error: %v\n", err)
			}
		}()
	}

	if *crashFlag {
		panic("TEST CRASH: synthetic panic to verify crash logging")
	}

	if *versionFlag {
		fmt.Printf("murmur %s\n", version)
		os.Exit(0)
	}

	if *doctorFlag {
		os.Exit(doctor.Run())
	}

	if !*tuiFlag || *expertFlag {
		if err := log.Init(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not init logging: %v\n", err)
		}
	}

	trans, err := transcriber.New()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	if *langFlag != "" {
		trans.SetLanguage(*langFlag)
	}

	audioCtx, err := audio.NewContext()
	if err != nil {
		log.Errorf("audio context init error: %v", err)
		fmt.Printf("Error initializing audio context: %v\n", err)
		os.Exit(1)
	}
	defer audioCtx.Close()

	var selectedDevice *audio.DeviceInfo
	if *deviceFlag != "" {
		if devices, err := audioCtx.Devices(); err == nil {
			for i := range devices {
				if devices[i].Name == *deviceFlag {
					selectedDevice = &devices[i]
					break
				}
			}
		}
		if selectedDevice == nil {
			fmt.Printf("Warning: device %q not found, using system default\n", *deviceFlag)
		}
	} else if *setupFlag {
		selectedDevice, err = audio.SelectDevice(audioCtx)
		if err != nil {
			log.Warnf("device selection failed: %v", err)
			fmt.Printf("Warning: device selection failed: %v\n", err)
			fmt.Println("Falling back to default device")
			selectedDevice = nil
		}
	}

	runCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := control.New()
	priv := &privilegedService{
		trans:    trans,
		saver:    save.NewService(save.NewSystemDialog()),
		audioCtx: audioCtx,
		hideFn:   func() { tuiSend(HideMsg{}) },
	}
	go ch.Serve(runCtx, priv)

	granted, err := ch.RequestMicAccess(runCtx)
	if err != nil {
		fmt.Printf("Error checking microphone access: %v\n", err)
		os.Exit(1)
	}
	if !granted {
		fmt.Println("Error: no microphone available (permission denied or no capture devices)")
		os.Exit(1)
	}

	sess := capture.NewSession(audioCtx, selectedDevice, audio.CaptureConfig{
		SampleRate: encoder.SampleRate,
		Channels:   encoder.Channels,
	}, capture.WithMonitor(func(segment []byte) {
		tuiSend(AudioLevelMsg{Level: rmsLevel(segment)})
	}))
	if err := sess.Err(); err != nil {
		log.Errorf("capture init error: %v", err)
		fmt.Printf("Warning: microphone stream unavailable: %v\n", err)
	}

	ind := indicator.New(indicator.WithObserver(func(s indicator.State) {
		tuiSend(IndicatorMsg{State: s})
	}))

	rec := newRecorder(ch, sess, ind, *autoPasteFlag)

	if *autoPasteFlag {
		if err := clipboard.Init(); err != nil {
			fmt.Printf("Warning: paste init failed: %v\n", err)
			fmt.Println("Fix with: sudo chmod 660 /dev/uinput && sudo chgrp input /dev/uinput")
		}
	}

	if !*tuiFlag {
		tuiReadyOnce.Do(func() { close(tuiReady) })
	} else {
		tuiMu.Lock()
		tuiProgram = NewTUIProgram()
		tuiMu.Unlock()

		go func() {
			if _, err := tuiProgram.Run(); err != nil {
				log.Errorf("TUI error: %v", err)
				os.Exit(1)
			}
			gracefulShutdown()
		}()

		<-tuiReady
	}

	tray.OnToggle(func() { ch.NotifyToggle() })
	tray.OnCopyLast(func() {
		if text := rec.LastText(); text != "" {
			clipboard.Copy(text)
		}
	})
	tray.OnSaveLast(func() {
		audioData := rec.LastAudio()
		if len(audioData) == 0 {
			return
		}
		go func() {
			if _, err := ch.SaveRecording(runCtx, audioData); err != nil {
				log.Errorf("save error: %v", err)
				tray.SetError(err.Error())
			}
		}()
	})
	trayQuit := tray.Init()

	sigChan := make(chan os.Signal, 1)
	shutdown.Notify(sigChan)
	go func() {
		select {
		case <-sigChan:
		case <-trayQuit:
		}
		cancel()
		gracefulShutdown()
	}()

	go beep.Init()

	hk := hotkey.New()
	if err := hk.Register(); err != nil {
		log.Errorf("hotkey register error: %v", err)
		fmt.Printf("Error registering hotkey: %v\n", err)
		os.Exit(1)
	}
	defer hk.Unregister()

	log.SessionStart(trans.Name(), sess.DeviceName())
	tuiSend(ProviderLineMsg{Text: providerLineText(trans)})
	tuiSend(DeviceLineMsg{Text: deviceLineText(selectedDevice)})

	ind.Request(indicator.Dormant)
	tray.SetState(indicator.Dormant)

	go rec.Run(runCtx)

	hotkeyLoop(runCtx, hk, ch)
}

// hotkeyLoop is the privileged event loop: the hotkey is the only input it
// owns. Presses cross the boundary as bare toggle signals; releases are
// drained so the backend's send never blocks.
func hotkeyLoop(ctx context.Context, hk hotkey.Hotkey, ch *control.Channel) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-hk.Keydown():
			log.Info("hotkey_down")
			ch.NotifyToggle()
		case <-hk.Keyup():
		}
	}
}

func providerLineText(t transcriber.Transcriber) string {
	label := t.Name()
	if lang := t.GetLanguage(); lang != "" {
		label += " (" + lang + ")"
	}
	return "[" + label + "]"
}

// rmsLevel computes the normalized RMS of one PCM segment for the level
// meter and the no-voice warning.
func rmsLevel(segment []byte) float64 {
	if len(segment) < 2 {
		return 0
	}
	var sumSquares float64
	for i := 0; i+1 < len(segment); i += 2 {
		sample := int16(binary.LittleEndian.Uint16(segment[i:]))
		normalized := float64(sample) / 32768.0
		sumSquares += normalized * normalized
	}
	return math.Sqrt(sumSquares / float64(len(segment)/2))
}
