// Package main provides the entry point for the Mixamo FBX to MMD VMD
// converter.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/lanterneq/mixamo-vmd/pkg/config"
	"github.com/lanterneq/mixamo-vmd/pkg/convert"
	"github.com/lanterneq/mixamo-vmd/pkg/infrastructure/logger"
	"github.com/lanterneq/mixamo-vmd/pkg/preview"
	"github.com/lanterneq/mixamo-vmd/pkg/retarget"
)

const (
	defaultSettingsFile = "settings.txt"
	defaultLogFile      = "log.txt"
)

func main() {
	var (
		inPath       string
		outPath      string
		fps          int
		modelName    string
		previewPath  string
		settingsFile string
		verbosity    int
		listBones    bool
		showHelp     bool
	)

	flag.StringVar(&inPath, "in", "", "Source .fbx file or directory to convert")
	flag.StringVar(&outPath, "out", "", "Destination .vmd file (single-input mode) or directory (batch mode)")
	flag.IntVar(&fps, "fps", 30, "Output frame rate")
	flag.StringVar(&modelName, "model", "", "Destination model name (<=20 bytes, shift-encoded)")
	flag.StringVar(&previewPath, "preview", "", "Optional debug glTF/glb path to also write")
	flag.StringVar(&settingsFile, "settings", defaultSettingsFile, "Settings file path")
	flag.IntVar(&verbosity, "verbosity", -1, "Logger verbosity override (0=info, 1=warning, 2=error)")
	flag.BoolVar(&listBones, "list-bones", false, "Print the known bone-name map and retarget-pair coverage, then exit")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.Parse()

	if listBones {
		printBoneMap()
		return
	}

	if showHelp || inPath == "" {
		printUsage()
		if inPath == "" {
			os.Exit(1)
		}
		return
	}

	log, err := logger.NewFileLogger(defaultLogFile, logger.VerbosityInfo)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	settings := config.NewSettings(settingsFile, log)
	if err := settings.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not load settings file: %v\n", err)
	}
	if verbosity >= 0 {
		settings.LoggerVerbosity = verbosity
	}
	log.SetVerbosity(logger.Verbosity(settings.LoggerVerbosity))

	fpsSet := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "fps" {
			fpsSet = true
		}
	})
	if !fpsSet {
		fps = settings.OutputFPS
	}
	if modelName == "" {
		modelName = settings.ModelName
	}

	start := time.Now()

	sources, err := resolveSources(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	failures := 0
	for _, src := range sources {
		dest := destinationFor(src, inPath, outPath, len(sources) > 1)
		if err := convertFile(src, dest, modelName, fps, previewPath, settings, log); err != nil {
			log.LogError(fmt.Sprintf("failed to convert %s: %v", src, err))
			fmt.Fprintf(os.Stderr, "failed to convert %s: %v\n", src, err)
			failures++
			continue
		}
		fmt.Printf("%s -> %s\n", src, dest)
	}

	elapsed := time.Since(start)
	fmt.Printf("Done in %.2fs (%d file(s), %d failure(s))\n", elapsed.Seconds(), len(sources), failures)
	if failures > 0 {
		os.Exit(1)
	}
}

// resolveSources expands inPath into the list of .fbx files to convert:
// itself if it is a file, or every .fbx file directly inside it if it is
// a directory.
func resolveSources(inPath string) ([]string, error) {
	info, err := os.Stat(inPath)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", inPath, err)
	}

	if !info.IsDir() {
		return []string{inPath}, nil
	}

	entries, err := os.ReadDir(inPath)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", inPath, err)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".fbx") {
			continue
		}
		out = append(out, filepath.Join(inPath, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// destinationFor picks the output path for one source file: outPath
// itself in single-input mode, or outPath/<name>.vmd (falling back to
// alongside the source) in batch mode.
func destinationFor(src, inPath, outPath string, batch bool) string {
	if outPath != "" && !batch {
		return outPath
	}

	base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)) + ".vmd"
	if outPath != "" {
		return filepath.Join(outPath, base)
	}
	return filepath.Join(filepath.Dir(src), base)
}

func convertFile(src, dest, modelName string, fps int, previewPath string, settings *config.Settings, log logger.Logger) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}

	clips, err := convert.Load(data, log)
	if err != nil {
		return fmt.Errorf("decode %s: %w", src, err)
	}
	if len(clips) == 0 {
		return fmt.Errorf("no animation clips found in %s", src)
	}

	retargeted := convert.Retarget(clips)

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	blob := convert.WriteVMD(retargeted[0], modelName, fps)
	if err := os.WriteFile(dest, blob, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", dest, err)
	}

	if settings.EmitGltfPreview || previewPath != "" {
		path := previewPath
		if path == "" {
			path = strings.TrimSuffix(dest, filepath.Ext(dest)) + ".glb"
		}
		format := preview.FormatGlb
		if strings.EqualFold(filepath.Ext(path), ".gltf") {
			format = preview.FormatGlTF
		}
		if err := preview.Write(clips[0], retargeted[0], path, format); err != nil {
			log.LogWarning(fmt.Sprintf("preview export failed for %s: %v", src, err))
		}
	}

	return nil
}

func printBoneMap() {
	names := retarget.KnownBones()
	sort.Strings(names)
	for _, name := range names {
		destName, hasPair := retarget.Lookup(name)
		pairNote := "no retarget pair"
		if hasPair {
			pairNote = "has retarget pair"
		}
		fmt.Printf("%-24s -> %-12s (%s)\n", name, destName, pairNote)
	}
}

func printUsage() {
	fmt.Println("mixamovmd")
	fmt.Println("")
	fmt.Println("Converts a Mixamo-style FBX animation into an MMD-style VMD motion file.")
	fmt.Println("")
	fmt.Println("Usage: mixamovmd -in=<file-or-dir> [-out=<file-or-dir>] [flags]")
	fmt.Println("")
	fmt.Println("Flags:")
	flag.PrintDefaults()
}
