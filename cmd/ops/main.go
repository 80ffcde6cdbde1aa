package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/yrrving/plastsamlaren/internal/config"
	"github.com/yrrving/plastsamlaren/internal/ops"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "backup":
		if err := cmdBackup(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "backup failed:", err)
			os.Exit(1)
		}
	case "restore":
		if err := cmdRestore(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "restore failed:", err)
			os.Exit(1)
		}
	case "drill":
		if err := cmdDrill(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "drill failed:", err)
			os.Exit(1)
		}
	case "quest":
		if err := cmdQuest(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, "quest failed:", err)
			os.Exit(1)
		}
	default:
		printUsage()
		os.Exit(2)
	}
}

func cmdBackup(args []string) error {
	fs := flag.NewFlagSet("backup", flag.ContinueOnError)
	dataDir := fs.String("data-dir", "data", "path to data directory")
	out := fs.String("out", "", "output archive path (.tar.gz)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *out == "" {
		ts := time.Now().UTC().Format("20060102T150405Z")
		*out = filepath.Join("backups", "plastsamlaren-"+ts+".tar.gz")
	}

	if err := ops.BackupDataDir(*dataDir, *out); err != nil {
		return err
	}
	fmt.Println(*out)
	return nil
}

func cmdRestore(args []string) error {
	fs := flag.NewFlagSet("restore", flag.ContinueOnError)
	archive := fs.String("archive", "", "input backup archive (.tar.gz)")
	target := fs.String("target-dir", "data-restored", "restore target directory")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *archive == "" {
		return fmt.Errorf("archive is required")
	}
	return ops.RestoreDataDir(*archive, *target)
}

func cmdDrill(args []string) error {
	fs := flag.NewFlagSet("drill", flag.ContinueOnError)
	dataDir := fs.String("data-dir", "data", "path to data directory")
	workDir := fs.String("work-dir", os.TempDir(), "temporary workspace for drill artifacts")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := os.MkdirAll(*workDir, 0o755); err != nil {
		return err
	}
	ts := time.Now().UTC().Format("20060102T150405Z")
	archive := filepath.Join(*workDir, "plastsamlaren-drill-"+ts+".tar.gz")
	restoreDir := filepath.Join(*workDir, "plastsamlaren-drill-restore-"+ts)

	if err := ops.BackupDataDir(*dataDir, archive); err != nil {
		return err
	}
	if err := ops.RestoreDataDir(archive, restoreDir); err != nil {
		return err
	}

	dbs, err := filepath.Glob(filepath.Join(restoreDir, "*.db"))
	if err != nil {
		return err
	}
	for _, db := range dbs {
		if err := ops.CheckSQLite(context.Background(), db); err != nil {
			return fmt.Errorf("%s: %w", filepath.Base(db), err)
		}
		fmt.Println("checked:", db)
	}

	srcDigest, err := dirDigest(*dataDir)
	if err != nil {
		return err
	}
	restoreDigest, err := dirDigest(restoreDir)
	if err != nil {
		return err
	}
	if srcDigest != restoreDigest {
		return fmt.Errorf("digest mismatch after restore: src=%s restored=%s", srcDigest, restoreDigest)
	}

	fmt.Println("backup:", archive)
	fmt.Println("restored:", restoreDir)
	fmt.Println("digest:", srcDigest)
	return nil
}

func cmdQuest(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("quest needs a subcommand: show | clear")
	}
	fs := flag.NewFlagSet("quest "+args[0], flag.ContinueOnError)
	cfgPath := fs.String("config", "plastsamlaren.yml", "path to config file")
	dataDir := fs.String("data-dir", "", "path to data directory (defaults to server.data_dir)")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	if *dataDir == "" {
		*dataDir = cfg.Server.DataDir
	}

	switch args[0] {
	case "show":
		rep, err := ops.InspectQuest(*dataDir, cfg.Generator(), time.Now())
		if err != nil {
			return err
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	case "clear":
		if err := ops.ClearQuest(*dataDir); err != nil {
			return err
		}
		fmt.Println("quest record cleared")
		return nil
	default:
		return fmt.Errorf("unknown quest subcommand %q", args[0])
	}
}

func dirDigest(root string) (string, error) {
	root = filepath.Clean(root)
	entries := []string{}
	if err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		// Databases are archived as snapshots, not byte copies.
		if d.IsDir() || ops.IsSQLiteFile(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		entries = append(entries, filepath.ToSlash(rel))
		return nil
	}); err != nil {
		return "", err
	}
	sort.Strings(entries)

	h := sha256.New()
	for _, rel := range entries {
		_, _ = io.WriteString(h, rel)
		_, _ = io.WriteString(h, "\n")
		b, err := os.ReadFile(filepath.Join(root, rel))
		if err != nil {
			return "", err
		}
		if _, err := h.Write(b); err != nil {
			return "", err
		}
		_, _ = io.WriteString(h, "\n")
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

func printUsage() {
	fmt.Println("usage:")
	fmt.Println("  plastsamlaren-ops backup  --data-dir data --out backups/backup.tar.gz")
	fmt.Println("  plastsamlaren-ops restore --archive backups/backup.tar.gz --target-dir data-restored")
	fmt.Println("  plastsamlaren-ops drill   --data-dir data --work-dir /tmp")
	fmt.Println("  plastsamlaren-ops quest show  [--config plastsamlaren.yml] [--data-dir data]")
	fmt.Println("  plastsamlaren-ops quest clear [--config plastsamlaren.yml] [--data-dir data]")
}
