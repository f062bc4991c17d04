package trainer

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lowaak/smart-trainer/tabata-app/internal/interval"
	"github.com/lowaak/smart-trainer/tabata-app/internal/workouts"
)

// Page names for tview.Pages
const (
	pageWorkoutSelection = "workout_selection"
	pageTimer            = "timer"
	pageEditor           = "editor"
)

// Editor field labels
const (
	labelName      = "Name"
	labelExercise  = "Exercise (s)"
	labelRest      = "Rest (s)"
	labelExercises = "Exercises"
	labelRounds    = "Rounds"
	labelRoundRest = "Round rest (s)"
)

// CursesUIViewImpl implements UIViewImpl using tview (curses-based terminal UI)
type CursesUIViewImpl struct {
	logger      *log.Logger
	app         *tview.Application
	model       *UIModel
	currentMode UIMode

	// Root container that holds all pages
	pages *tview.Pages

	// Shared components (visible in all modes)
	logView  *tview.TextView
	mainFlex *tview.Flex // Main layout: mode content on left, logs on right

	// Workout Selection mode components
	workoutSelectionFlex       *tview.Flex
	workoutSelectionTabWidgets []*tview.Box
	workoutList                *tview.List
	workoutDetailsPanel        *tview.TextView
	workouts                   []interval.WorkoutConfig

	// Timer mode components
	timerFlex       *tview.Flex
	timerTabWidgets []*tview.Box
	timerPanel      *tview.TextView
	keysPanel       *tview.TextView

	// Workout editor, shown over the selection page
	editorForm    *tview.Form
	editorOpen    bool
	editorWorkout interval.WorkoutConfig
}

func NewCursesUIView(logger *log.Logger, app *tview.Application, model *UIModel) *CursesUIViewImpl {
	return &CursesUIViewImpl{
		logger:      logger,
		app:         app,
		model:       model,
		currentMode: UIModeWorkoutSelection,
	}
}

// Initialize sets up the tview widgets
func (ui *CursesUIViewImpl) Initialize(controller *UIController) {
	// Don't use SetChangedFunc with app.Draw() on the log view, it can hang
	// during shutdown. BaseUIView redraws after updating content.
	ui.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(false)
	ui.logView.SetBorder(true).SetTitle(" Logs ")

	// Create pages container for mode switching
	ui.pages = tview.NewPages()

	ui.initWorkoutSelectionMode(controller)
	ui.initTimerMode()
	ui.initEditor(controller)

	ui.pages.AddPage(pageWorkoutSelection, ui.workoutSelectionFlex, true, true)
	ui.pages.AddPage(pageTimer, ui.timerFlex, true, false)
	ui.pages.AddPage(pageEditor, centered(ui.editorForm, 50, 17), true, false)

	// Create main layout: pages on left, logs on right
	ui.mainFlex = tview.NewFlex().
		AddItem(ui.pages, 0, 3, true).
		AddItem(ui.logView, 0, 2, false)

	ui.setFocusForCurrentMode()
}

// initWorkoutSelectionMode sets up the Workout Selection mode UI
func (ui *CursesUIViewImpl) initWorkoutSelectionMode(controller *UIController) {
	instructionsText := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	instructionsText.SetText("[yellow]Enter[white] Start  |  [yellow]A[white] Add  |  [yellow]E[white] Edit  |  [yellow]D[white] Delete\n[yellow]1[white] Workouts  |  [yellow]2[white] Timer  |  [yellow]Esc[white] Quit")

	ui.workoutList = tview.NewList().
		ShowSecondaryText(true).
		SetSelectedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			ui.logger.Printf("UI: Workout selected: index=%d, name=%s", index, mainText)
			controller.OnWorkoutSelected(index)
		}).
		SetChangedFunc(func(index int, mainText, secondaryText string, shortcut rune) {
			ui.updateWorkoutDetailsDisplay(index)
		})
	ui.workoutList.SetBorder(true).SetTitle(" Workouts ")

	ui.workoutDetailsPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	ui.workoutDetailsPanel.SetBorder(true).SetTitle(" Workout Details ")
	ui.updateWorkoutDetailsDisplay(-1)

	ui.workoutSelectionTabWidgets = append(ui.workoutSelectionTabWidgets, ui.workoutList.Box, ui.workoutDetailsPanel.Box)

	columns := tview.NewFlex().
		SetDirection(tview.FlexColumn).
		AddItem(ui.workoutList, 0, 1, true).
		AddItem(ui.workoutDetailsPanel, 0, 1, false)

	ui.workoutSelectionFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(instructionsText, 2, 0, false).
		AddItem(columns, 0, 1, true)
}

// initTimerMode sets up the Timer mode UI
func (ui *CursesUIViewImpl) initTimerMode() {
	ui.timerPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	ui.timerPanel.SetBorder(true).SetTitle(" Timer ")

	ui.keysPanel = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	ui.keysPanel.SetBorder(true)

	ui.timerTabWidgets = append(ui.timerTabWidgets, ui.timerPanel.Box)

	ui.timerFlex = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(ui.timerPanel, 0, 1, true).
		AddItem(ui.keysPanel, 3, 0, false)

	ui.UpdateTimer(interval.Snapshot{Phase: interval.PhaseStopped, CurrentRound: 1, CurrentExercise: 1})
}

// initEditor sets up the add/edit workout form
func (ui *CursesUIViewImpl) initEditor(controller *UIController) {
	ui.editorForm = tview.NewForm().
		AddInputField(labelName, "", 30, nil, nil).
		AddInputField(labelExercise, "", 5, tview.InputFieldInteger, nil).
		AddInputField(labelRest, "", 5, tview.InputFieldInteger, nil).
		AddInputField(labelExercises, "", 5, tview.InputFieldInteger, nil).
		AddInputField(labelRounds, "", 5, tview.InputFieldInteger, nil).
		AddInputField(labelRoundRest, "", 5, tview.InputFieldInteger, nil).
		AddButton("Save", func() { ui.saveEditor(controller) }).
		AddButton("Cancel", ui.closeEditor)
	ui.editorForm.SetBorder(true)
	ui.editorForm.SetCancelFunc(ui.closeEditor)
}

// centered wraps p in a flex that keeps it at width x height in the middle
func centered(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}

func (ui *CursesUIViewImpl) openEditor(workout interval.WorkoutConfig, title string) {
	ui.editorWorkout = workout
	ui.setEditorField(labelName, workout.Name)
	ui.setEditorField(labelExercise, strconv.Itoa(workout.ExerciseDuration))
	ui.setEditorField(labelRest, strconv.Itoa(workout.RestDuration))
	ui.setEditorField(labelExercises, strconv.Itoa(workout.ExerciseCount))
	ui.setEditorField(labelRounds, strconv.Itoa(workout.RoundCount))
	ui.setEditorField(labelRoundRest, strconv.Itoa(workout.RoundRestDuration))
	ui.editorForm.SetTitle(title)
	ui.editorForm.SetFocus(0)

	ui.editorOpen = true
	ui.pages.ShowPage(pageEditor)
	ui.app.SetFocus(ui.editorForm)
}

func (ui *CursesUIViewImpl) closeEditor() {
	ui.editorOpen = false
	ui.pages.HidePage(pageEditor)
	ui.setFocusForCurrentMode()
}

func (ui *CursesUIViewImpl) saveEditor(controller *UIController) {
	workout, err := applyEditorFields(ui.editorWorkout, ui.editorField)
	if err != nil {
		ui.editorForm.SetTitle(fmt.Sprintf(" [red]%s[-] ", err))
		return
	}

	if err := controller.SaveWorkout(workout); err != nil {
		ui.editorForm.SetTitle(fmt.Sprintf(" [red]%s[-] ", err))
		return
	}
	ui.closeEditor()
}

// applyEditorFields copies the editor's text onto workout. A blank numeric
// field takes the new workout default.
func applyEditorFields(workout interval.WorkoutConfig, field func(label string) string) (interval.WorkoutConfig, error) {
	defaults := workouts.NewWorkout()
	workout.Name = field(labelName)
	fields := []struct {
		label string
		dst   *int
		def   int
	}{
		{labelExercise, &workout.ExerciseDuration, defaults.ExerciseDuration},
		{labelRest, &workout.RestDuration, defaults.RestDuration},
		{labelExercises, &workout.ExerciseCount, defaults.ExerciseCount},
		{labelRounds, &workout.RoundCount, defaults.RoundCount},
		{labelRoundRest, &workout.RoundRestDuration, defaults.RoundRestDuration},
	}
	for _, f := range fields {
		text := field(f.label)
		if text == "" {
			*f.dst = f.def
			continue
		}
		n, err := strconv.Atoi(text)
		if err != nil {
			return workout, fmt.Errorf("%s: not a number", f.label)
		}
		*f.dst = n
	}
	return workout, nil
}

func (ui *CursesUIViewImpl) setEditorField(label, value string) {
	if field, ok := ui.editorForm.GetFormItemByLabel(label).(*tview.InputField); ok {
		field.SetText(value)
	}
}

func (ui *CursesUIViewImpl) editorField(label string) string {
	if field, ok := ui.editorForm.GetFormItemByLabel(label).(*tview.InputField); ok {
		return strings.TrimSpace(field.GetText())
	}
	return ""
}

// SetWorkoutList populates the workout selection list
func (ui *CursesUIViewImpl) SetWorkoutList(list WorkoutList) {
	ui.workouts = list.Workouts
	ui.workoutList.Clear()

	for _, workout := range list.Workouts {
		ui.workoutList.AddItem(workout.Name, formatWorkoutSummary(workout), 0, nil)
	}

	if list.Selected >= 0 && list.Selected < len(list.Workouts) {
		ui.workoutList.SetCurrentItem(list.Selected)
	}
	ui.updateWorkoutDetailsDisplay(ui.workoutList.GetCurrentItem())
}

// formatWorkoutSummary is the one-line description shown under a workout's name
func formatWorkoutSummary(w interval.WorkoutConfig) string {
	return fmt.Sprintf("%ds/%ds x %d x %d  (%s)",
		w.ExerciseDuration, w.RestDuration, w.ExerciseCount, w.RoundCount, formatDuration(w.TotalDuration()))
}

// formatDuration formats a duration for display
func formatDuration(d time.Duration) string {
	totalSeconds := int(d.Seconds())
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	if hours > 0 {
		return fmt.Sprintf("%dh %02dm", hours, minutes)
	}
	if seconds == 0 {
		return fmt.Sprintf("%d min", minutes)
	}
	return fmt.Sprintf("%dm %02ds", minutes, seconds)
}

// updateWorkoutDetailsDisplay formats and displays the workout details
func (ui *CursesUIViewImpl) updateWorkoutDetailsDisplay(index int) {
	if ui.workoutDetailsPanel == nil {
		return
	}

	var text string

	if index < 0 || index >= len(ui.workouts) {
		text = "\n\n  [yellow]Workout Selection[white]\n\n"
		text += "  Select a workout from the list to view details.\n\n"
		text += "  [gray]Press A to add a workout.[white]\n"
	} else {
		workout := ui.workouts[index]
		text = "\n"
		text += fmt.Sprintf("  [yellow]%s[white]\n\n", tview.Escape(workout.Name))
		text += fmt.Sprintf("  [gray]Exercise:[white]   %ds\n", workout.ExerciseDuration)
		text += fmt.Sprintf("  [gray]Rest:[white]       %ds\n", workout.RestDuration)
		text += fmt.Sprintf("  [gray]Exercises:[white]  %d\n", workout.ExerciseCount)
		text += fmt.Sprintf("  [gray]Rounds:[white]     %d\n", workout.RoundCount)
		if workout.RoundCount > 1 {
			text += fmt.Sprintf("  [gray]Round rest:[white] %ds\n", workout.RoundRestDuration)
		}
		text += fmt.Sprintf("\n  [gray]Total:[white]      %s\n", formatDuration(workout.TotalDuration()))
		text += "\n  [green]Press Enter to start this workout[white]\n"
	}

	ui.workoutDetailsPanel.SetText(text)
}

// UpdateTimer renders the phase, countdown and progress of a run
func (ui *CursesUIViewImpl) UpdateTimer(snapshot interval.Snapshot) {
	if ui.timerPanel == nil {
		return
	}

	style := GetPhaseStyle(snapshot.Phase)
	workout := snapshot.Workout
	ui.timerPanel.SetBorderColor(tcell.GetColor(style.Color))

	if workout.Name == "" {
		ui.timerPanel.SetText("\n\n[gray]No workout loaded[white]\n\nGo to Workout Selection (press 1) to pick one.")
		ui.keysPanel.SetText("[yellow]1[white] Workouts  |  [yellow]Esc[white] Quit")
		return
	}

	var text strings.Builder
	text.WriteString("\n")
	fmt.Fprintf(&text, "[yellow::b]%s[-::-]\n\n", tview.Escape(workout.Name))
	fmt.Fprintf(&text, "[%s::b]%s[-::-]\n\n", style.Color, style.Label)

	switch snapshot.Phase {
	case interval.PhaseStopped:
		fmt.Fprintf(&text, "[::b]%s[::-]\n\n", formatSeconds(int(workout.TotalDuration().Seconds())))
		fmt.Fprintf(&text, "%d exercises x %d rounds\n", workout.ExerciseCount, workout.RoundCount)
	case interval.PhaseCompleted:
		fmt.Fprintf(&text, "[%s]%s[-]\n\n", style.Color, progressBar(1))
		fmt.Fprintf(&text, "%d rounds done in %s\n", workout.RoundCount, formatDuration(workout.TotalDuration()))
	default:
		fmt.Fprintf(&text, "[::b]%s[::-]\n\n", formatSeconds(snapshot.TimeRemaining))
		fmt.Fprintf(&text, "[%s]%s[-] %3.0f%%\n\n", style.Color, progressBar(snapshot.Progress()), snapshot.Progress()*100)
		fmt.Fprintf(&text, "[gray]Round[white] %d/%d    [gray]Exercise[white] %d/%d\n",
			snapshot.CurrentRound, workout.RoundCount, snapshot.CurrentExercise, workout.ExerciseCount)
	}

	ui.timerPanel.SetText(text.String())
	ui.keysPanel.SetText(timerKeyHints(snapshot.Phase))
}

func timerKeyHints(phase interval.Phase) string {
	switch phase {
	case interval.PhaseStopped:
		return "[yellow]Space[white] Start  |  [yellow]B[white] Back"
	case interval.PhaseReady:
		return "[yellow]Space[white] Pause  |  [yellow]N[white] Start now  |  [yellow]X[white] Stop"
	case interval.PhasePaused:
		return "[yellow]Space[white] Resume  |  [yellow]X[white] Stop"
	case interval.PhaseCompleted:
		return "[yellow]Space[white] Reset  |  [yellow]B[white] Back"
	default:
		return "[yellow]Space[white] Pause  |  [yellow]X[white] Stop"
	}
}

// progressBar renders fraction (0..1) as a fixed width bar
func progressBar(fraction float64) string {
	filled := int(fraction*progressBarWidth + 0.5)
	filled = max(0, min(progressBarWidth, filled))
	return strings.Repeat("█", filled) + "[gray]" + strings.Repeat("░", progressBarWidth-filled)
}

// formatSeconds formats whole seconds as MM:SS
func formatSeconds(totalSeconds int) string {
	return fmt.Sprintf("%02d:%02d", totalSeconds/60, totalSeconds%60)
}

// SetMode switches the UI to the specified mode
func (ui *CursesUIViewImpl) SetMode(mode UIMode) {
	if ui.currentMode == mode {
		return
	}

	ui.currentMode = mode

	switch mode {
	case UIModeWorkoutSelection:
		ui.pages.SwitchToPage(pageWorkoutSelection)
	case UIModeTimer:
		ui.pages.SwitchToPage(pageTimer)
	}
	ui.editorOpen = false

	ui.setFocusForCurrentMode()
	ui.app.Draw()
}

// GetCurrentMode returns the currently active UI mode
func (ui *CursesUIViewImpl) GetCurrentMode() UIMode {
	return ui.currentMode
}

// setFocusForCurrentMode sets focus to the first widget in the current mode
func (ui *CursesUIViewImpl) setFocusForCurrentMode() {
	if widgets := ui.getTabWidgetsForCurrentMode(); len(widgets) > 0 {
		ui.app.SetFocus(widgets[0])
	}
}

// getTabWidgetsForCurrentMode returns the tab widgets for the current mode
func (ui *CursesUIViewImpl) getTabWidgetsForCurrentMode() []*tview.Box {
	switch ui.currentMode {
	case UIModeWorkoutSelection:
		return ui.workoutSelectionTabWidgets
	case UIModeTimer:
		return ui.timerTabWidgets
	default:
		return nil
	}
}

// SetupKeyboardHandlers sets up keyboard event handlers
func (ui *CursesUIViewImpl) SetupKeyboardHandlers(controller *UIController) {
	ui.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// The editor owns the keyboard while open; Esc reaches its cancel func
		if ui.editorOpen {
			return event
		}

		// Number keys for mode switching
		if event.Key() == tcell.KeyRune {
			if mode, ok := GetUIModeByKey(event.Rune()); ok {
				// Delegate to controller - it will update the model, which will notify us
				controller.OnModeChange(mode)
				return nil
			}
		}

		// Tab to switch focus between widgets in current mode
		if event.Key() == tcell.KeyTab {
			widgets := ui.getTabWidgetsForCurrentMode()
			for i, widget := range widgets {
				if widget.HasFocus() {
					ui.app.SetFocus(widgets[(i+1)%len(widgets)])
					break
				}
			}
			return nil
		}

		// Escape to quit
		if event.Key() == tcell.KeyEscape {
			controller.OnEscapeKey()
			return nil
		}

		if event.Key() != tcell.KeyRune {
			return event
		}

		// Mode-specific key handlers
		switch ui.currentMode {
		case UIModeWorkoutSelection:
			switch event.Rune() {
			case 'a':
				ui.openEditor(controller.NewWorkout(), " Add Workout ")
				return nil
			case 'e':
				if index := ui.workoutList.GetCurrentItem(); index >= 0 && index < len(ui.workouts) {
					ui.openEditor(ui.workouts[index], " Edit Workout ")
				}
				return nil
			case 'd':
				controller.DeleteWorkout(ui.workoutList.GetCurrentItem())
				return nil
			}
		case UIModeTimer:
			switch event.Rune() {
			case ' ':
				controller.ToggleWorkout()
				return nil
			case 'n':
				controller.SkipReady()
				return nil
			case 'x':
				controller.StopWorkout()
				return nil
			case 'b':
				controller.BackToSelection()
				return nil
			}
		}

		return event
	})
}

// GetLogViewHeight returns the visible height of the log view
func (ui *CursesUIViewImpl) GetLogViewHeight() int {
	_, _, _, height := ui.logView.GetInnerRect()
	return height
}

// ClearLogView clears the log view
func (ui *CursesUIViewImpl) ClearLogView() {
	ui.logView.Clear()
}

// WriteLogLine writes a line to the log view
func (ui *CursesUIViewImpl) WriteLogLine(line string) error {
	_, err := fmt.Fprintln(ui.logView, tview.Escape(line))
	return err
}

// Draw refreshes/redraws the UI
func (ui *CursesUIViewImpl) Draw() error {
	ui.app.Draw()
	return nil
}

// Run starts the UI and blocks until it exits
func (ui *CursesUIViewImpl) Run() error {
	// SetRoot must be called before setting focus, otherwise focus may be reset
	ui.app.SetRoot(ui.mainFlex, true)
	ui.setFocusForCurrentMode()
	return ui.app.Run()
}

// Stop stops the UI framework
func (ui *CursesUIViewImpl) Stop() {
	ui.app.Stop()
}
