package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/trivial-water-tracker/internal/model"
	"github.com/Tiliavir/trivial-water-tracker/internal/timecalc"
	"github.com/Tiliavir/trivial-water-tracker/internal/water"
)

var (
	profileName   string
	profileAge    string
	profileWeight string
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show your profile and daily goal",
	Args:  cobra.NoArgs,
	RunE:  runProfile,
}

var profileSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Save name, age and weight; unset flags keep their saved value",
	Args:  cobra.NoArgs,
	RunE:  runProfileSet,
}

func init() {
	profileSetCmd.Flags().StringVar(&profileName, "name", "", "Your name")
	profileSetCmd.Flags().StringVar(&profileAge, "age", "", "Age in years")
	profileSetCmd.Flags().StringVar(&profileWeight, "weight", "", "Weight in kg, used for the daily goal")
	profileCmd.AddCommand(profileSetCmd)
}

func runProfile(cmd *cobra.Command, args []string) error {
	w := cmd.OutOrStdout()
	p := app.Service.Profile(cmd.Context())
	if p == nil {
		fmt.Fprintln(w, "No profile saved yet. Create one with 'twt profile set --name <name> --weight <kg>'.")
		fmt.Fprintf(w, "Daily goal: %s (default)\n", timecalc.FormatML(model.DefaultGoal))
		return nil
	}

	fmt.Fprintf(w, "Name:   %s\n", p.Name)
	fmt.Fprintf(w, "Age:    %d\n", p.Age)
	fmt.Fprintf(w, "Weight: %d kg\n", p.Weight)
	printGoalHint(cmd, *p)
	return nil
}

func runProfileSet(cmd *cobra.Command, args []string) error {
	in := mergeProfileInput(app.Service.Profile(cmd.Context()), func(name string) (string, bool) {
		f := cmd.Flags().Lookup(name)
		return f.Value.String(), f.Changed
	})

	out, err := app.Service.SaveProfile(cmd.Context(), in)
	if errors.Is(err, water.ErrInvalidProfile) {
		return usageError(err)
	}
	if err != nil {
		return storageError(err)
	}
	warnWrite(cmd, out.WriteErr)

	fmt.Fprintf(cmd.OutOrStdout(), "Profile saved for %s.\n", out.Profile.Name)
	printGoalHint(cmd, out.Profile)
	return nil
}

// mergeProfileInput starts from the saved profile and overrides every field
// whose flag was given.
func mergeProfileInput(saved *model.Profile, flag func(name string) (string, bool)) water.ProfileInput {
	var in water.ProfileInput
	if saved != nil {
		in = water.ProfileInput{Name: saved.Name, Age: strconv.Itoa(saved.Age), Weight: strconv.Itoa(saved.Weight)}
	}
	if v, ok := flag("name"); ok {
		in.Name = v
	}
	if v, ok := flag("age"); ok {
		in.Age = v
	}
	if v, ok := flag("weight"); ok {
		in.Weight = v
	}
	return in
}

func printGoalHint(cmd *cobra.Command, p model.Profile) {
	w := cmd.OutOrStdout()
	goal := model.DailyGoal(&p)
	if p.Weight > 0 {
		fmt.Fprintf(w, "Daily goal: %s (%d kg × %d ml)\n", timecalc.FormatML(goal), p.Weight, model.MLPerKg)
		return
	}
	fmt.Fprintf(w, "Daily goal: %s (default, set --weight for a personal goal)\n", timecalc.FormatML(goal))
}
