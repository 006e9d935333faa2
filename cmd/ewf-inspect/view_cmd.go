package main

import (
	"fmt"

	"github.com/gdamore/tcell"
	"github.com/rivo/tview"
	"github.com/spf13/cobra"

	"github.com/open-forensics/ewf-inspect/internal/fat"
	"github.com/open-forensics/ewf-inspect/internal/inspect"
)

// createViewCommand creates the view subcommand
func createViewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "view IMAGE_FILE",
		Short: "interactive file listing viewer",
		Long: `View opens an interactive terminal browser over the FAT file
listings of the evidence file. Use the arrow keys to navigate,
Enter to expand a directory, and q or Escape to quit.`,
		Args: cobra.ExactArgs(1),
		RunE: executeView,
	}
}

func executeView(cmd *cobra.Command, args []string) error {
	data, err := readEvidenceFile(args[0])
	if err != nil {
		return err
	}

	inspector := inspect.NewInspector(false)
	summary := inspector.InspectBytes(args[0], data)
	if len(summary.Filesystems) == 0 {
		return fmt.Errorf("no FAT filesystems found in %s", args[0])
	}

	root := tview.NewTreeNode(summary.File).SetColor(tcell.ColorYellow)
	for idx := range summary.Filesystems {
		fs := &summary.Filesystems[idx]
		partNode := tview.NewTreeNode(fmt.Sprintf("Partition %d (%s)", fs.PartitionIndex, fs.Variant)).
			SetColor(tcell.ColorGreen)
		addEntryNodes(partNode, fs.Entries)
		root.AddChild(partNode)
	}

	detail := tview.NewTextView().SetDynamicColors(true)
	detail.SetBorder(true).SetTitle("Details")

	tree := tview.NewTreeView().SetRoot(root).SetCurrentNode(root)
	tree.SetBorder(true).SetTitle("Files")
	tree.SetChangedFunc(func(node *tview.TreeNode) {
		detail.Clear()
		entry, ok := node.GetReference().(*fat.FileEntry)
		if !ok {
			return
		}
		fmt.Fprintf(detail, "Name:\t%s\n", entry.Name)
		fmt.Fprintf(detail, "Short name:\t%s\n", entry.ShortName)
		if entry.Extension != "" {
			fmt.Fprintf(detail, "Extension:\t%s\n", entry.Extension)
		}
		fmt.Fprintf(detail, "Path:\t%s\n", entry.Path)
		fmt.Fprintf(detail, "Directory:\t%t\n", entry.IsDirectory)
		fmt.Fprintf(detail, "Hidden:\t%t\n", entry.IsHidden)
		fmt.Fprintf(detail, "System:\t%t\n", entry.IsSystem)
		fmt.Fprintf(detail, "Size:\t%d bytes\n", entry.Size)
		fmt.Fprintf(detail, "First cluster:\t%d\n", entry.Cluster)
	})
	tree.SetSelectedFunc(func(node *tview.TreeNode) {
		node.SetExpanded(!node.IsExpanded())
	})

	flex := tview.NewFlex().
		AddItem(tree, 0, 2, true).
		AddItem(detail, 0, 1, false)

	app := tview.NewApplication()
	app.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyEscape || ev.Rune() == 'q' {
			app.Stop()
			return nil
		}
		return ev
	})

	return app.SetRoot(flex, true).Run()
}

func addEntryNodes(parent *tview.TreeNode, entries []*fat.FileEntry) {
	for _, e := range entries {
		label := e.Name
		color := tcell.ColorWhite
		if e.IsDirectory {
			label += "/"
			color = tcell.ColorBlue
		}
		node := tview.NewTreeNode(label).SetReference(e).SetColor(color)
		if e.IsDirectory {
			addEntryNodes(node, e.Children)
			node.SetExpanded(false)
		}
		parent.AddChild(node)
	}
}
