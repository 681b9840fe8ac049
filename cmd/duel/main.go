package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/reikiduel/reiki-server-go/internal/bot"
	"github.com/reikiduel/reiki-server-go/internal/catalog"
	"github.com/reikiduel/reiki-server-go/internal/game"
)

var (
	mode     = flag.String("mode", "auto", "duel mode: auto (bot vs bot) or human (you take seat 0)")
	seed     = flag.Uint64("seed", 0, "shuffle seed (0 picks a random one)")
	turns    = flag.Int("turns", 0, "turn limit override (0 keeps the default)")
	delay    = flag.Duration("delay", 250*time.Millisecond, "pacing between automatic steps")
	cardFile = flag.String("cards", "", "card catalog JSON (embedded set when empty)")
	name     = flag.String("name", "You", "player name for the human seat")
	debug    = flag.Bool("debug", false, "verbose engine logging")
)

var fieldSlots = []game.Slot{
	game.SlotVanguard1,
	game.SlotVanguard2,
	game.SlotRearguard1,
	game.SlotRearguard2,
	game.SlotSupport,
}

func main() {
	flag.Parse()

	logger, err := initLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	defs := catalog.Default()
	if *cardFile != "" {
		defs, err = catalog.LoadFile(*cardFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load card catalog: %v\n", err)
			os.Exit(1)
		}
	}

	rules := game.DefaultRules()
	if *turns > 0 {
		rules.MaxTurns = *turns
	}

	opts := game.Options{
		Rules:   rules,
		Catalog: defs,
		Logger:  logger,
		Seed:    *seed,
	}

	human := *mode == string(game.ModeHuman)
	if human {
		opts.Mode = game.ModeHuman
		opts.Names = [2]string{*name, "Reiki Bot"}
		opts.Drivers = [2]game.Driver{nil, bot.New(logger.Named("bot"), *delay)}
	} else {
		opts.Mode = game.ModeAuto
		opts.Names = [2]string{"Bot East", "Bot West"}
		opts.Drivers = [2]game.Driver{
			bot.New(logger.Named("east"), 0),
			bot.New(logger.Named("west"), 0),
		}
		opts.StepDelay = *delay
	}

	sess, err := game.NewSession(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start duel: %v\n", err)
		os.Exit(1)
	}

	sess.Events().Subscribe(render)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if human {
		fmt.Println("You hold seat 0. Commands: hand, board, play <n> <slot>, attack <slot> <slot|base-N>, end, quit")
		go repl(sess, cancel)
	}

	res := sess.Run(ctx)
	printResult(sess, res)
}

func render(ev game.Event) {
	switch ev.Type {
	case game.EventNotice:
		if ev.Level == game.NoticeError {
			fmt.Printf("  ! %s\n", ev.Message)
			return
		}
		fmt.Printf("  %s\n", ev.Message)
	case game.EventSkill:
		fmt.Printf("  * %s triggers %s\n", ev.CardName, ev.Message)
	case game.EventPhaseChanged:
		if ev.Message == "START" {
			fmt.Println()
		}
	}
}

func printResult(sess *game.Session, res game.Result) {
	snap := sess.Snapshot()
	fmt.Println()
	if res.Winner != nil {
		fmt.Printf("%s wins after %d turns (%s)\n", snap.Players[*res.Winner].Name, res.Turns, res.Reason)
		return
	}
	fmt.Printf("Draw after %d turns (%s)\n", res.Turns, res.Reason)
}

// repl reads commands from stdin and submits them for seat 0. EOF or quit
// cancels the session.
func repl(sess *game.Session, cancel context.CancelFunc) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !dispatch(sess, line) {
			cancel()
			return
		}
	}
	cancel()
}

// dispatch runs one command. It returns false when the player quits.
func dispatch(sess *game.Session, line string) bool {
	args := strings.Fields(line)
	switch args[0] {
	case "quit", "exit":
		return false
	case "help":
		fmt.Println("hand | board | play <n> <slot> | attack <slot> <slot|base-N> | end | quit")
	case "hand":
		printHand(sess.Snapshot())
	case "board":
		printBoard(sess.Snapshot())
	case "play":
		submitPlay(sess, args)
	case "attack":
		submitAttack(sess, args)
	case "end":
		submit(sess, game.ActionRequest{Kind: game.ActionEndPhase})
	default:
		fmt.Printf("  ? unknown command %q (try help)\n", args[0])
	}
	return true
}

func submitPlay(sess *game.Session, args []string) {
	if len(args) < 2 {
		fmt.Println("  ? usage: play <hand#> [slot]")
		return
	}
	idx, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Println("  ? usage: play <hand#> [slot]")
		return
	}

	hand := sess.Snapshot().Players[game.SeatFirst].Hand
	if idx < 1 || idx > len(hand) {
		fmt.Printf("  ? hand has %d cards\n", len(hand))
		return
	}

	req := game.ActionRequest{Kind: game.ActionPlayCard, CardID: hand[idx-1].ID}
	if len(args) > 2 {
		req.Slot = game.Slot(args[2])
	}
	submit(sess, req)
}

func submitAttack(sess *game.Session, args []string) {
	if len(args) < 3 {
		fmt.Println("  ? usage: attack <slot> <slot|base-N>")
		return
	}

	snap := sess.Snapshot()
	attacker, ok := snap.Players[game.SeatFirst].Field[game.Slot(args[1])]
	if !ok {
		fmt.Printf("  ? no unit at %s\n", args[1])
		return
	}

	req := game.ActionRequest{Kind: game.ActionDeclareAttack, CardID: attacker.ID}
	if strings.HasPrefix(args[2], "base") {
		req.TargetBase = args[2]
	} else {
		req.TargetSlot = game.Slot(args[2])
	}
	submit(sess, req)
}

func submit(sess *game.Session, req game.ActionRequest) {
	req.Seat = game.SeatFirst
	err := sess.Submit(req)
	switch {
	case err == nil:
	case errors.Is(err, game.ErrSessionFinished):
		fmt.Println("  the duel is over")
	case errors.Is(err, game.ErrInvalidAction):
		// The session already printed the rejection notice.
	default:
		fmt.Printf("  ! %v\n", err)
	}
}

func printHand(snap *game.Snapshot) {
	hand := snap.Players[game.SeatFirst].Hand
	me := snap.Players[game.SeatFirst]
	fmt.Printf("hand (%d cards, reiki %d/%d):\n", len(hand), me.Reiki, me.ReikiMax)
	for i, c := range hand {
		fmt.Printf("  %d. %s\n", i+1, describeCard(c))
	}
}

func printBoard(snap *game.Snapshot) {
	fmt.Printf("turn %d, %s phase, seat %d to act\n", snap.Turn, snap.Phase, snap.ActiveSeat)
	for seat := range snap.Players {
		p := snap.Players[seat]
		fmt.Printf("[%d] %s  reiki %d/%d  deck %d  hand %d  trash %d\n",
			seat, p.Name, p.Reiki, p.ReikiMax, p.DeckCount, len(p.Hand), len(p.Trash))
		for _, b := range p.Bases {
			status := fmt.Sprintf("gauge %d", b.Gauge)
			if b.Owner != nil {
				status = fmt.Sprintf("captured by seat %d", *b.Owner)
			}
			fmt.Printf("    %s: %s\n", b.ID, status)
		}
		for _, slot := range fieldSlots {
			card, ok := p.Field[slot]
			if !ok {
				continue
			}
			fmt.Printf("    %s: %s\n", slot, describeCard(card))
		}
	}
}

func describeCard(c game.CardSnapshot) string {
	desc := fmt.Sprintf("%s (%s, cost %d", c.Name, c.Type, c.Cost)
	if c.Type == catalog.TypeUnit {
		desc += fmt.Sprintf(", power %d", c.Power)
	}
	desc += ")"
	if c.Rested {
		desc += " [rested]"
	}
	return desc
}

func initLogger(debug bool) (*zap.Logger, error) {
	zapCfg := zap.NewDevelopmentConfig()
	zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	zapCfg.Level = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	if debug {
		zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	return zapCfg.Build()
}
