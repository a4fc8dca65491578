// Package mpv drives an external mpv process over JSON-IPC and exposes it as an
// adapter.Adapter.
package mpv

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/reelkit/reel/adapter"
	"github.com/reelkit/reel/key"
	"github.com/reelkit/reel/log"
	"github.com/reelkit/reel/media"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// ErrNotRunning is returned by synchronous calls made before mpv was launched.
var ErrNotRunning = errors.New("mpv is not running")

type phase int

const (
	phaseIdle phase = iota
	phaseLoading
	phaseLoaded
)

// Engine is one mpv instance. It is launched lazily by the first Prepare and reused
// by later ones until Release.
type Engine struct {
	launch sync.Mutex // one mpv launch at a time

	mu       sync.Mutex
	cb       adapter.Callback
	display  adapter.Display
	src      *media.Source
	startAt  time.Duration
	tracks   [3][media.NumTrackTypes]*media.Track
	proc     *process
	events   *listener
	phase    phase
	loadGen  uint64
	seeking  bool
	seekable bool
	duration time.Duration
	position time.Duration
	tick     int64
	buffered int
	size     media.Size
	volume   float64
	muted    bool
	speed    float64
	pitch    float64
	released bool
}

var _ adapter.Adapter = (*Engine)(nil)

// New is an adapter.Factory.
func New(src *media.Source) (adapter.Adapter, error) {
	return &Engine{
		cb:     adapter.NopCallback{},
		src:    src,
		volume: 1,
		speed:  1,
		pitch:  1,
	}, nil
}

func (e *Engine) callback() adapter.Callback {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cb
}

func (e *Engine) SetCallback(cb adapter.Callback) {
	if cb == nil {
		cb = adapter.NopCallback{}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cb = cb
}

// SetDisplay takes effect on the next launch; mpv cannot move to another window.
func (e *Engine) SetDisplay(d adapter.Display) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.display = d
	if e.proc != nil && d != nil {
		log.Debugf("mpv: display %d applies after relaunch", d.Handle())
	}
}

func (e *Engine) SetSource(src *media.Source) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.src = src
}

func (e *Engine) Source() *media.Source {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.src
}

func (e *Engine) SetStartPosition(pos time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.startAt = pos
}

func (e *Engine) SelectTrack(typ media.TrackType, track *media.Track) {
	if !typ.Valid() {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tracks[adapter.SlotSelected][typ] = track
}

func (e *Engine) Track(slot adapter.Slot, typ media.TrackType) *media.Track {
	if !typ.Valid() || slot < adapter.SlotCurrent || slot > adapter.SlotSelected {
		return nil
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.tracks[slot][typ]
}

// SupportsSmoothSwitch is false: a variant change reloads the file.
func (e *Engine) SupportsSmoothSwitch(media.TrackType) bool {
	return false
}

func (e *Engine) SwitchTrack(typ media.TrackType, _ *media.Track) error {
	return fmt.Errorf("mpv: in-place %s switch not supported", typ)
}

// Prepare locates mpv once per process, launches it if needed and loads the selected
// tracks paused at the start position.
func (e *Engine) Prepare() error {
	e.mu.Lock()
	if e.released {
		e.mu.Unlock()
		return errors.New("mpv: prepare after release")
	}
	e.phase = phaseLoading
	e.loadGen++
	gen := e.loadGen
	e.mu.Unlock()

	go func() {
		_ = binary.Init(locate)
	}()
	binary.Run(func(err error) {
		if err != nil {
			e.callback().OnError(adapter.CodeEngineStart, err.Error())
			return
		}
		go e.load(gen)
	})
	return nil
}

// current reports whether gen is still the latest Prepare and nothing stopped it.
func (e *Engine) current(gen uint64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.released && e.loadGen == gen
}

func (e *Engine) load(gen uint64) {
	proc, err := e.ensureProcess()
	if !e.current(gen) {
		log.Debugf("mpv: load %d superseded", gen)
		return
	}
	if err != nil {
		e.callback().OnError(adapter.CodeEngineStart, err.Error())
		return
	}

	e.mu.Lock()
	video := e.tracks[adapter.SlotSelected][media.TrackVideo]
	audio := e.tracks[adapter.SlotSelected][media.TrackAudio]
	startAt := e.startAt
	e.mu.Unlock()

	commands, err := loadCommands(video, audio, startAt)
	if err != nil {
		e.callback().OnError(adapter.CodeSource, err.Error())
		return
	}

	if err := proc.set("pause", true); err != nil {
		e.callback().OnError(adapter.CodeIPC, err.Error())
		return
	}
	for _, args := range commands {
		if !e.current(gen) {
			log.Debugf("mpv: load %d superseded", gen)
			return
		}
		if _, err := proc.command(args...); err != nil {
			e.callback().OnError(adapter.CodeIPC, err.Error())
			return
		}
	}
}

// loadCommands builds the IPC sequence that loads the selection. A separate audio
// track rides along as an external audio file. Start and audio files go through
// properties: loadfile's per-file options argument moved between mpv releases.
func loadCommands(video, audio *media.Track, startAt time.Duration) ([][]any, error) {
	primary := video
	if primary == nil {
		primary = audio
	}
	if primary == nil {
		return nil, errors.New("no track selected")
	}

	target, err := mediaTarget(primary.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid media target: %w", err)
	}

	start := "none"
	if startAt > 0 {
		start = fmt.Sprintf("%.3f", startAt.Seconds())
	}

	commands := [][]any{
		{"set_property", "start", start},
		{"change-list", "audio-files", "clr", ""},
	}
	if audio != nil && audio != primary {
		audioTarget, err := mediaTarget(audio.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid audio target: %w", err)
		}
		commands = append(commands, []any{"change-list", "audio-files", "append", audioTarget})
	}

	return append(commands, []any{"loadfile", target, "replace"}), nil
}

func (e *Engine) ensureProcess() (*process, error) {
	e.launch.Lock()
	defer e.launch.Unlock()

	e.mu.Lock()
	if e.proc != nil && e.proc.running() {
		proc := e.proc
		e.mu.Unlock()
		return proc, nil
	}
	var wid int64
	if e.display != nil {
		wid = e.display.Handle()
	}
	e.mu.Unlock()

	proc, err := spawn(binaryPath, wid, viper.GetStringSlice(key.MpvExtraFlags))
	if err != nil {
		return nil, err
	}

	events, err := listen(proc.socketPath, e.handle)
	if err != nil {
		proc.close()
		return nil, err
	}

	e.mu.Lock()
	if e.released {
		e.mu.Unlock()
		events.stop()
		proc.close()
		return nil, errors.New("mpv: released while launching")
	}
	e.proc, e.events = proc, events
	volume, muted, speed, pitch := e.volume, e.muted, e.speed, e.pitch
	e.mu.Unlock()

	_ = proc.set("volume", volume*100)
	_ = proc.set("mute", muted)
	_ = proc.set("speed", speed)
	_ = proc.set("pitch", pitch)

	go e.watchExit(proc)
	return proc, nil
}

func (e *Engine) watchExit(proc *process) {
	<-proc.Exited()

	e.mu.Lock()
	released := e.released
	if e.proc == proc {
		e.proc = nil
	}
	e.mu.Unlock()

	if !released {
		e.callback().OnError(adapter.CodeEngineExited, "mpv exited")
	}
}

func (e *Engine) running() (*process, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.proc == nil || e.phase != phaseLoaded {
		return nil, ErrNotRunning
	}
	return e.proc, nil
}

func (e *Engine) Start() error {
	proc, err := e.running()
	if err != nil {
		return err
	}
	return proc.set("pause", false)
}

func (e *Engine) Pause() error {
	proc, err := e.running()
	if err != nil {
		return err
	}
	return proc.set("pause", true)
}

// Stop unloads the file and keeps mpv idle for the next Prepare.
func (e *Engine) Stop() error {
	e.mu.Lock()
	proc := e.proc
	e.phase = phaseIdle
	e.loadGen++
	e.seeking = false
	e.mu.Unlock()

	if proc == nil {
		return nil
	}
	_, err := proc.command("stop")
	return err
}

func (e *Engine) Release() error {
	e.mu.Lock()
	if e.released {
		e.mu.Unlock()
		return nil
	}
	e.released = true
	e.cb = adapter.NopCallback{}
	proc, events := e.proc, e.events
	e.proc, e.events = nil, nil
	e.mu.Unlock()

	if events != nil {
		events.stop()
	}
	if proc != nil {
		proc.close()
	}
	return nil
}

func (e *Engine) SeekTo(pos time.Duration) error {
	proc, err := e.running()
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.seeking = true
	e.mu.Unlock()

	go func() {
		if _, err := proc.command("seek", pos.Seconds(), "absolute"); err != nil {
			log.Warnf("mpv: seek: %s", err)
			e.mu.Lock()
			e.seeking = false
			e.mu.Unlock()
			e.callback().OnSeekComplete(false)
		}
	}()
	return nil
}

func (e *Engine) Seekable() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.seekable
}

func (e *Engine) Duration() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.duration
}

func (e *Engine) Position() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.position
}

func (e *Engine) BufferedPercentage() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buffered
}

func (e *Engine) VideoSize() media.Size {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.size
}

func (e *Engine) SetVolume(volume float64) {
	e.setProperty(func() { e.volume = volume }, "volume", volume*100)
}

func (e *Engine) Volume() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.volume
}

func (e *Engine) SetMuted(muted bool) {
	e.setProperty(func() { e.muted = muted }, "mute", muted)
}

func (e *Engine) Muted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

func (e *Engine) SetSpeed(speed float64) {
	e.setProperty(func() { e.speed = speed }, "speed", speed)
}

func (e *Engine) Speed() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.speed
}

func (e *Engine) SetPitch(pitch float64) {
	e.setProperty(func() { e.pitch = pitch }, "pitch", pitch)
}

func (e *Engine) Pitch() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pitch
}

// setProperty records a setting and forwards it when mpv is up. Launch replays the rest.
func (e *Engine) setProperty(store func(), property string, value any) {
	e.mu.Lock()
	store()
	proc := e.proc
	e.mu.Unlock()

	if proc == nil {
		return
	}
	if err := proc.set(property, value); err != nil {
		log.Warnf("mpv: set %s: %s", property, err)
	}
}

// handle maps one mpv event onto the callback. It runs on the listener goroutine.
func (e *Engine) handle(msg ipcMessage) {
	switch msg.Event {
	case "property-change":
		e.property(msg.Name, msg.Data)
	case "file-loaded":
		e.fileLoaded()
	case "end-file":
		if msg.Reason == "error" {
			e.callback().OnError(adapter.CodeSource, fmt.Sprintf("mpv could not play the file: %s", msg.FileError))
		}
	}
}

func (e *Engine) fileLoaded() {
	e.mu.Lock()
	if e.phase != phaseLoading {
		e.mu.Unlock()
		return
	}
	e.phase = phaseLoaded
	e.position = e.startAt
	e.tick = -1
	for _, typ := range media.TrackTypes {
		e.tracks[adapter.SlotCurrent][typ] = e.tracks[adapter.SlotSelected][typ]
		e.tracks[adapter.SlotPending][typ] = nil
	}
	src, cb := e.src, e.cb
	e.mu.Unlock()

	if src != nil {
		for _, typ := range media.TrackTypes {
			if tracks := src.Tracks(typ); len(tracks) > 0 {
				cb.OnTrackInfoReady(typ, tracks)
			}
		}
	}
	cb.OnPrepared()
}

func (e *Engine) property(name string, data any) {
	e.mu.Lock()
	cb := e.cb
	loaded := e.phase == phaseLoaded

	var notify func()
	switch name {
	case "time-pos":
		if data == nil {
			break
		}
		e.position = seconds(cast.ToFloat64(data))
		if sec := int64(e.position / time.Second); loaded && sec != e.tick {
			e.tick = sec
			pos, dur := e.position, e.duration
			notify = func() { cb.OnProgress(pos, dur) }
		}

	case "duration":
		e.duration = seconds(cast.ToFloat64(data))

	case "seekable":
		e.seekable = cast.ToBool(data)

	case "seeking":
		if !cast.ToBool(data) && e.seeking {
			e.seeking = false
			notify = func() { cb.OnSeekComplete(true) }
		}

	case "eof-reached":
		if loaded && cast.ToBool(data) {
			notify = cb.OnCompletion
		}

	case "paused-for-cache":
		if cast.ToBool(data) {
			notify = cb.OnBufferingStart
		} else {
			notify = cb.OnBufferingEnd
		}

	case "cache-buffering-state":
		e.buffered = cast.ToInt(data)
		pct := e.buffered
		notify = func() { cb.OnBufferingUpdate(pct) }

	case "video-params":
		params := cast.ToStringMap(data)
		size := media.Size{Width: cast.ToInt(params["w"]), Height: cast.ToInt(params["h"])}
		if size != e.size && size.Width > 0 {
			e.size = size
			notify = func() { cb.OnVideoSizeChanged(size) }
		}

	case "demuxer-cache-state":
		state := cast.ToStringMap(data)
		if bytes := cast.ToInt64(state["fw-bytes"]); bytes > 0 {
			notify = func() { cb.OnCacheHint(bytes) }
		}
	}
	e.mu.Unlock()

	if notify != nil {
		notify()
	}
}

func seconds(s float64) time.Duration {
	if math.IsNaN(s) || s < 0 {
		return 0
	}
	return time.Duration(s * float64(time.Second))
}
