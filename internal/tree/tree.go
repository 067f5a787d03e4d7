// Package tree builds and renders the foreground listing. Per-directory
// sizes come from the sizes façade, so a warm snapshot makes even a deep
// listing render instantly; cold directories fall back to an online walk
// inside the façade.
package tree

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/lsq-dev/lsq/internal/fsys"
	"github.com/lsq-dev/lsq/internal/sizes"
	"github.com/lsq-dev/lsq/internal/ui"
)

// Node is one rendered entry. Size and Files carry the walker sentinels:
// negative means unknown, shown as a dash.
type Node struct {
	Name     string
	Path     string
	Kind     fsys.Kind
	Broken   bool // symlink whose target cannot be statted
	Size     int64
	Files    int64
	Children []*Node
}

// Build lists root down to depth levels below it (depth 0 lists only the
// root's immediate entries' aggregate). Directory entries that cannot be
// enumerated still appear, with unknown sizes.
func Build(root string, depth int, r *sizes.Resolver) (*Node, error) {
	root = filepath.Clean(root)
	n := &Node{
		Name: filepath.Base(root),
		Path: root,
		Kind: fsys.KindDir,
	}
	res := r.Lookup(root)
	n.Size, n.Files = res.Size, res.Files
	if err := expand(n, depth, r); err != nil {
		return nil, err
	}
	return n, nil
}

func expand(n *Node, depth int, r *sizes.Resolver) error {
	if depth <= 0 {
		return nil
	}
	d, err := fsys.OpenDir(n.Path)
	if err != nil {
		return err
	}
	entries, err := d.ReadBatch()
	if err != nil {
		_ = d.Close()
		return err
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	for _, e := range entries {
		child := &Node{
			Name: e.Name,
			Path: filepath.Join(n.Path, e.Name),
			Kind: e.Kind,
			Size: e.Size,
		}
		switch e.Kind {
		case fsys.KindDir:
			res := r.Lookup(child.Path)
			child.Size, child.Files = res.Size, res.Files
		case fsys.KindSymlink:
			if _, ok := d.ClassifySymlinkTarget(e.Name); !ok {
				child.Broken = true
			}
		}
		n.Children = append(n.Children, child)
	}
	_ = d.Close()

	for _, child := range n.Children {
		if child.Kind != fsys.KindDir {
			continue
		}
		// Enumeration failures below the top level degrade to a leaf.
		_ = expand(child, depth-1, r)
	}
	return nil
}

// RenderOptions controls Render. Plain disables styling; MaxWidth caps the
// name column so long names do not wrap the size off screen.
type RenderOptions struct {
	Plain    bool
	MaxWidth int
}

// Render writes the tree with box-drawing branches.
func Render(w io.Writer, n *Node, opts RenderOptions) {
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = 80
	}
	writeLine(w, n, "", opts)
	renderChildren(w, n, "", opts)
}

func renderChildren(w io.Writer, n *Node, prefix string, opts RenderOptions) {
	for i, child := range n.Children {
		last := i == len(n.Children)-1
		branch, next := "├── ", "│   "
		if last {
			branch, next = "└── ", "    "
		}
		if !opts.Plain {
			branch = ui.Branch.Render(branch)
		}
		fmt.Fprint(w, prefix+branch)
		writeLine(w, child, prefix+next, opts)
		renderChildren(w, child, prefix+next, opts)
	}
}

func writeLine(w io.Writer, n *Node, prefix string, opts RenderOptions) {
	name := n.Name
	if limit := opts.MaxWidth - len(prefix) - 24; limit > 8 && len(name) > limit {
		name = name[:limit-1] + "…"
	}

	size := ui.HumanSize(n.Size)
	switch {
	case opts.Plain:
		if n.Kind == fsys.KindDir {
			fmt.Fprintf(w, "%s  %s (%s files)\n", name, size, ui.HumanCount(n.Files))
		} else {
			fmt.Fprintf(w, "%s  %s\n", name, size)
		}
	case n.Kind == fsys.KindDir:
		fmt.Fprintf(w, "%s  %s %s\n",
			ui.Dir.Render(name),
			ui.Size.Render(size),
			ui.Count.Render("("+ui.HumanCount(n.Files)+" files)"))
	case n.Kind == fsys.KindSymlink && n.Broken:
		fmt.Fprintf(w, "%s\n", ui.Broken.Render(name))
	case n.Kind == fsys.KindSymlink:
		fmt.Fprintf(w, "%s\n", ui.Link.Render(name))
	default:
		fmt.Fprintf(w, "%s  %s\n", name, ui.Size.Render(size))
	}
}
