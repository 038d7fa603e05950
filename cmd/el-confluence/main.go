package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/moamenhredeen/el-confluence/internal/config"
	"github.com/moamenhredeen/el-confluence/internal/confluence"
	"github.com/moamenhredeen/el-confluence/internal/drafts"
	"github.com/moamenhredeen/el-confluence/internal/format"
	"github.com/moamenhredeen/el-confluence/internal/resolve"
	"github.com/moamenhredeen/el-confluence/internal/session"
	"github.com/moamenhredeen/el-confluence/internal/tui"
	"github.com/moamenhredeen/el-confluence/internal/validate"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if cfg.BaseURL == "" {
		fmt.Fprintln(os.Stderr, "No base_url configured. Create ~/.el-confluence/config.json with at least base_url, username and api_token.")
		os.Exit(1)
	}

	// Optional positional argument: a page URL or a raw page ID.
	initialID := ""
	if len(os.Args) > 1 {
		arg := strings.TrimSpace(os.Args[1])
		if strings.Contains(arg, "/") {
			id, err := resolve.FromURL(arg)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			initialID = id
		} else {
			initialID = resolve.FromID(arg)
		}
	}

	client := confluence.NewClient(cfg.BaseURL, cfg.Username, cfg.APIToken)
	manager := session.NewManager(client)

	// Drafts are best-effort: a broken local database should not keep the
	// editor from starting.
	var draftStore *drafts.Store
	if path, err := cfg.DraftsDBPath(); err == nil {
		if store, err := drafts.Open(path); err == nil {
			draftStore = store
			defer store.Close()
		} else {
			fmt.Fprintf(os.Stderr, "Warning: drafts disabled: %v\n", err)
		}
	}

	p := tea.NewProgram(
		tui.NewRootModel(
			cfg,
			manager,
			format.NewCommand(cfg.FormatterCommand),
			validate.NewXMLLint(""),
			draftStore,
			initialID,
		),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running program: %v\n", err)
		os.Exit(1)
	}
}
