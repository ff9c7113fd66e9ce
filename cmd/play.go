package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/robalobadob/emojiquest/internal/game"
	"github.com/robalobadob/emojiquest/internal/puzzles"
	"github.com/robalobadob/emojiquest/internal/session"
)

// playCmd is a terminal client over a single session.
var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in the terminal",
	RunE: func(cmd *cobra.Command, args []string) error {
		rawLang, _ := cmd.Flags().GetString("lang")
		base, _ := cmd.Flags().GetString("base")
		seed, _ := cmd.Flags().GetUint64("seed")

		lang, err := puzzles.ParseLang(rawLang)
		if err != nil {
			return err
		}
		var src game.Source
		if seed != 0 {
			src = game.SeededSource(seed)
		}
		engine, _, closeFn, err := buildEngine(cmd.Context(), cfg, src)
		if err != nil {
			return err
		}
		defer closeFn()

		sess := session.New("terminal", lang, cfg.Rules(), src)
		return play(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout(), sess, engine, base)
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().String("lang", string(puzzles.DefaultLang), "puzzle language (en, sn, haw)")
	playCmd.Flags().String("base", "en", "language for meaning hints")
	playCmd.Flags().Uint64("seed", 0, "random seed for reproducible play (0: random)")
}

type gameService interface {
	session.Drawer
	session.Resetter
}

type player struct {
	out  io.Writer
	sess *session.Session
	game gameService
	base string
}

const playHelp = `commands:
  hint            reveal one word
  meaning [lang]  meaning hint (default base language)
  reveal          show the answer
  next | back     move through puzzles
  lang <code>     switch language (en, sn, haw)
  reset           clear progress, score and history
  quit
anything else is a guess; commands must be typed on their own`

// play runs the read-eval loop until quit or end of input.
func play(ctx context.Context, in io.Reader, out io.Writer, sess *session.Session, g gameService, base string) error {
	p := &player{out: out, sess: sess, game: g, base: base}
	if err := sess.Start(ctx, sess.Lang, g); err != nil {
		return err
	}
	fmt.Fprintln(out, playHelp)
	p.render()

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			break
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		quit, err := p.handle(ctx, line)
		if err != nil {
			fmt.Fprintf(out, "! %v\n", err)
		}
		if quit {
			return nil
		}
	}
	fmt.Fprintln(out)
	return sc.Err()
}

// bareCommands run only when the whole line is the command word.
var bareCommands = map[string]bool{
	"quit": true, "exit": true, "help": true, "?": true,
	"hint": true, "reveal": true, "next": true, "back": true, "reset": true,
}

// parseCommand splits line into a command and its argument. Lines that are
// not a command, such as the answer "next door", come back as a guess.
func parseCommand(line string) (cmd, arg string, ok bool) {
	word, rest, _ := strings.Cut(line, " ")
	word, rest = strings.ToLower(word), strings.TrimSpace(rest)
	switch {
	case bareCommands[word]:
		return word, "", rest == ""
	case word == "meaning" || word == "lang":
		return word, rest, rest == "" || isLangTag(rest)
	}
	return "", "", false
}

// isLangTag matches a short lowercase language code like "en" or "haw".
func isLangTag(s string) bool {
	if len(s) < 2 || len(s) > 3 {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}

func (p *player) handle(ctx context.Context, line string) (bool, error) {
	cmd, arg, ok := parseCommand(line)
	if !ok {
		cmd = ""
	}

	switch cmd {
	case "quit", "exit":
		fmt.Fprintf(p.out, "Final score %d, level %d. Bye!\n", p.sess.Score, p.sess.Level)
		return true, nil
	case "help", "?":
		fmt.Fprintln(p.out, playHelp)
	case "hint":
		if p.sess.Current() == nil {
			return false, session.ErrNoPuzzle
		}
		idx, ok := p.sess.RequestWordHint()
		if !ok {
			fmt.Fprintln(p.out, "No word hints left.")
			return false, nil
		}
		fmt.Fprintf(p.out, "Word %d revealed.\n", idx+1)
		p.render()
	case "meaning":
		base := p.base
		if arg != "" {
			base = arg
		}
		h, err := p.sess.RequestMeaningHint(base)
		if err != nil {
			return false, err
		}
		fmt.Fprintf(p.out, "Hint (%s): %s\n", base, h)
	case "reveal":
		if p.sess.Current() == nil {
			return false, session.ErrNoPuzzle
		}
		p.sess.RevealAnswer()
		fmt.Fprintf(p.out, "Answer: %s\n", p.sess.Current().Puzzle.Answer)
	case "next":
		if err := p.sess.GoForward(ctx, p.game); err != nil {
			return false, err
		}
		p.render()
	case "back":
		if !p.sess.GoBack() {
			fmt.Fprintln(p.out, "Already at the first puzzle.")
			return false, nil
		}
		p.render()
	case "lang":
		if arg == "" {
			return false, fmt.Errorf("usage: lang <code>")
		}
		lang, err := puzzles.ParseLang(arg)
		if err != nil {
			return false, err
		}
		if err := p.sess.Start(ctx, lang, p.game); err != nil {
			return false, err
		}
		p.render()
	case "reset":
		if err := p.sess.ResetAll(ctx, p.game); err != nil {
			return false, err
		}
		fmt.Fprintln(p.out, "Progress reset.")
		if err := p.sess.Start(ctx, p.sess.Lang, p.game); err != nil {
			return false, err
		}
		p.render()
	default:
		ok, err := p.sess.SubmitGuess(line)
		if err != nil {
			return false, err
		}
		if !ok {
			fmt.Fprintln(p.out, "Not quite, try again.")
			return false, nil
		}
		fmt.Fprintf(p.out, "Correct! Score %d, level %d.\n", p.sess.Score, p.sess.Level)
	}
	return false, nil
}

func (p *player) render() {
	if p.sess.IsComplete() {
		fmt.Fprintln(p.out, p.sess.Completed.Message)
		return
	}
	e := p.sess.Current()
	if e == nil {
		return
	}
	fmt.Fprintf(p.out, "[%s] puzzle %d/%d, %d left | score %d | level %d\n",
		e.Lang, e.PuzzleNumber, e.TotalPuzzles, e.RemainingPuzzles, p.sess.Score, p.sess.Level)
	fmt.Fprintf(p.out, "  %s\n  %s\n", e.Puzzle.Emojis, strings.Join(e.Mask(), "  "))
}
