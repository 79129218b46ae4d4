package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stammbaum/pkg/errors"
	"github.com/matzehuels/stammbaum/pkg/family"
	"github.com/matzehuels/stammbaum/pkg/region"
)

// regionsCommand groups the region management subcommands.
func (c *CLI) regionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "regions",
		Short: "Manage member regions",
		Long: `Manage regions: named member groupings rendered as colored overlays.

Members of a linked family always enter and leave a region together, and a
region holding exactly one linked family admits no other members until that
family is removed.`,
	}

	cmd.AddCommand(c.regionsListCommand())
	cmd.AddCommand(c.regionsCreateCommand())
	cmd.AddCommand(c.regionsDeleteCommand())
	cmd.AddCommand(c.regionsEditCommand())

	return cmd
}

func (c *CLI) regionsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <family>",
		Short: "List a family's regions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withTree(cmd.Context(), args[0], func(ctx context.Context, st family.Store, tree *family.Tree) error {
				if len(tree.Regions) == 0 {
					printInfo("no regions in %s", tree.Family.Name)
					return nil
				}
				model := region.New(tree.Family.ID, region.NewIndex(tree.Members))
				model.Load(tree.Regions)

				for _, rec := range model.Regions() {
					locked, _ := model.IsLinkedFamilyRegion(rec.ID)
					line := fmt.Sprintf("%s  %s", StyleValue.Render(rec.Name), StyleDim.Render(rec.ID))
					if locked {
						line += "  " + styleLocked.Render(iconLocked+" linked family")
					}
					fmt.Println(line)
					printDetail("%d members · %s", len(rec.MemberIDs), rec.Color)
				}
				return nil
			})
		},
	}
}

func (c *CLI) regionsCreateCommand() *cobra.Command {
	var (
		description string
		color       string
		memberIDs   []string
	)

	cmd := &cobra.Command{
		Use:   "create <family> <name>",
		Short: "Create a region",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withTree(cmd.Context(), args[0], func(ctx context.Context, st family.Store, tree *family.Tree) error {
				ix := region.NewIndex(tree.Members)
				model := region.New(tree.Family.ID, ix)
				model.Load(tree.Regions)

				// Resolve linked groups up front so the initial membership
				// is never a partial group.
				seen := make(map[string]struct{})
				var initial []string
				for _, id := range memberIDs {
					group, err := region.ExpandMembership(ix, id)
					if err != nil {
						return err
					}
					for _, gid := range group {
						if _, dup := seen[gid]; dup {
							continue
						}
						seen[gid] = struct{}{}
						initial = append(initial, gid)
					}
				}

				id, err := model.Create(args[1], description, color, initial)
				if err != nil {
					return err
				}
				rec, err := model.Region(id)
				if err != nil {
					return err
				}
				if err := st.PutRegion(ctx, rec); err != nil {
					return err
				}

				printSuccess("Created region %s", StyleHighlight.Render(args[1]))
				printDetail("id %s, %d members", id, len(rec.MemberIDs))
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&description, "description", "", "region description")
	cmd.Flags().StringVar(&color, "color", "", "overlay color (hex, default "+family.DefaultRegionColor+")")
	cmd.Flags().StringSliceVar(&memberIDs, "members", nil, "initial member ids (linked groups are expanded)")

	return cmd
}

func (c *CLI) regionsDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <family> <region-id>",
		Short: "Delete a region",
		Long:  `Delete a region. Deleting an unknown region id is a successful no-op.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withTree(cmd.Context(), args[0], func(ctx context.Context, st family.Store, tree *family.Tree) error {
				if err := st.DeleteRegion(ctx, args[1]); err != nil {
					return err
				}
				printSuccess("Deleted region %s", args[1])
				return nil
			})
		},
	}
}

func (c *CLI) regionsEditCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "edit <family> <region-id>",
		Short: "Edit region membership interactively",
		Long: `Open an interactive member list for one region. Enter toggles the
selected member; toggling a linked member moves its whole family, and a
linked-family region refuses members outside that family.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withTree(cmd.Context(), args[0], func(ctx context.Context, st family.Store, tree *family.Tree) error {
				model := region.New(tree.Family.ID, region.NewIndex(tree.Members))
				model.Load(tree.Regions)
				rec, err := model.Region(args[1])
				if err != nil {
					return err
				}

				editor := NewRegionEditModel(model, tree, rec.ID)
				prog := tea.NewProgram(editor)
				final, err := prog.Run()
				if err != nil {
					return err
				}

				edited, ok := final.(RegionEditModel)
				if !ok || !edited.Dirty {
					printInfo("no changes")
					return nil
				}
				updated, err := model.Region(rec.ID)
				if err != nil {
					return err
				}
				if err := st.PutRegion(ctx, updated); err != nil {
					return err
				}
				printSuccess("Saved region %s", StyleHighlight.Render(updated.Name))
				printDetail("%d members", len(updated.MemberIDs))
				return nil
			})
		},
	}
}

// withTree loads store and tree for a family reference and runs fn.
func (c *CLI) withTree(ctx context.Context, familyRef string, fn func(context.Context, family.Store, *family.Tree) error) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	store, err := c.newStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(context.Background()) }()

	f, err := resolveFamily(ctx, store, familyRef)
	if err != nil {
		return err
	}
	tree, err := store.Tree(ctx, f.ID)
	if err != nil {
		return err
	}
	return fn(ctx, store, tree)
}

// describeToggleError turns a rejected toggle into the one-line status shown
// in the editor footer.
func describeToggleError(err error) string {
	if errors.Is(err, errors.ErrCodeInvariant) {
		return "region is locked to its linked family"
	}
	return strings.TrimSpace(errors.UserMessage(err))
}
