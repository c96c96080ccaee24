package config

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Runtime flags live next to the TOML config, in a JSON file.
// Unlike the TOML sections, they can change while the server is running.

const overridesEnv = "BLOGFRONT_FLAG_OVERRIDES"

var (
	flagsPath string
	flagMapMu sync.RWMutex
	allFlags  = make(map[string]configFlag)
)

type configFlag interface {
	InternalName() string
	load(raw json.RawMessage) error
	override(raw string) error
}

type Flag[T any] interface {
	Value() T
	Update(T)
	InternalName() string
	HumanName() string
}

type flag[T any] struct {
	mu        sync.RWMutex
	name      string
	val       T
	humanName string
}

func (f *flag[T]) Value() T {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.val
}

func (f *flag[T]) InternalName() string {
	return f.name
}

func (f *flag[T]) HumanName() string {
	return f.humanName
}

func (f *flag[T]) Update(newVal T) {
	f.mu.Lock()
	f.val = newVal
	f.mu.Unlock()

	if err := SaveConfigV2(context.Background()); err != nil {
		slog.Warn("Couldn't save flag", slog.String("flag", f.name), slog.Any("err", err))
	}
}

func (f *flag[T]) load(raw json.RawMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := json.Unmarshal(raw, &f.val); err != nil {
		return fmt.Errorf("invalid value, flag expected %T", f.val)
	}
	return nil
}

func (f *flag[T]) override(raw string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	// Strings are special since overrides usually don't carry quotes
	if s, ok := any(&f.val).(*string); ok {
		*s = raw
		return nil
	}
	return json.Unmarshal([]byte(raw), &f.val)
}

func (f *flag[T]) MarshalJSON() ([]byte, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return json.Marshal(f.val)
}

// GenFlag registers a flag. It must be called at package initialization, before LoadConfigV2.
func GenFlag[T any](name string, defaultVal T, readableName string) Flag[T] {
	flagMapMu.Lock()
	defer flagMapMu.Unlock()
	f := &flag[T]{name: name, val: defaultVal, humanName: readableName}
	allFlags[name] = f
	return f
}

func GetFlag[T any](name string) (Flag[T], bool) {
	flagMapMu.RLock()
	defer flagMapMu.RUnlock()
	v, ok := allFlags[name].(*flag[T])
	if !ok {
		return nil, false
	}
	return v, true
}

func GetFlags[T any]() []Flag[T] {
	flagMapMu.RLock()
	defer flagMapMu.RUnlock()
	var flags []Flag[T]
	for _, flg := range allFlags {
		if f, ok := flg.(*flag[T]); ok {
			flags = append(flags, f)
		}
	}
	slices.SortFunc(flags, func(a, b Flag[T]) int {
		return cmp.Compare(a.InternalName(), b.InternalName())
	})
	return flags
}

func LoadConfigV2(ctx context.Context) error {
	if flagsPath == "" {
		return errors.New("invalid flags path")
	}
	flagMapMu.RLock()
	defer flagMapMu.RUnlock()

	f, err := os.Open(flagsPath)
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	if err == nil {
		defer f.Close()
		data := make(map[string]json.RawMessage)
		if err := json.NewDecoder(f).Decode(&data); err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		for key, raw := range data {
			flg, ok := allFlags[key]
			if !ok {
				slog.WarnContext(ctx, "Unknown flag", slog.String("key", key))
				continue
			}
			if err := flg.load(raw); err != nil {
				slog.WarnContext(ctx, "Couldn't load flag", slog.String("key", key), slog.Any("err", err))
			}
		}
	}

	for _, override := range strings.Split(os.Getenv(overridesEnv), ",") {
		if override == "" {
			continue
		}
		key, val, found := strings.Cut(override, "=")
		if !found {
			slog.WarnContext(ctx, "Invalid override", slog.String("override", override))
			continue
		}
		flg, ok := allFlags[key]
		if !ok {
			slog.WarnContext(ctx, "Could not find flag", slog.String("name", key))
			continue
		}
		if err := flg.override(val); err != nil {
			slog.WarnContext(ctx, "Invalid flag override", slog.String("key", key), slog.Any("err", err))
		}
	}

	return nil
}

func SaveConfigV2(ctx context.Context) error {
	if flagsPath == "" {
		return errors.New("invalid flags path")
	}
	if err := os.MkdirAll(filepath.Dir(flagsPath), 0755); err != nil {
		return err
	}
	flagMapMu.RLock()
	defer flagMapMu.RUnlock()

	data := make(map[string]configFlag, len(allFlags))
	for key, flg := range allFlags {
		data[key] = flg
	}

	file, err := os.Create(flagsPath)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(file)
	enc.SetIndent("", "\t")
	if err := enc.Encode(data); err != nil {
		file.Close() // The JSON is broken anyway
		return err
	}
	slog.DebugContext(ctx, "Saved flags", slog.String("path", flagsPath))
	return file.Close()
}

func SetConfigV2Path(path string) {
	flagsPath = path
}
