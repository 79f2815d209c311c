package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"slices"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/A-zanke/alumni-matcher/internal/ai"
	"github.com/A-zanke/alumni-matcher/internal/ai/gemini"
	"github.com/A-zanke/alumni-matcher/internal/department"
	"github.com/A-zanke/alumni-matcher/internal/filtering"
	"github.com/A-zanke/alumni-matcher/internal/logger"
	"github.com/A-zanke/alumni-matcher/internal/profile"
	"github.com/A-zanke/alumni-matcher/internal/ranking"
	"github.com/A-zanke/alumni-matcher/internal/secrets"
	"github.com/A-zanke/alumni-matcher/internal/store"
)

const (
	PromptPrint               = "Print recommendations as JSON"
	PromptReportByDepartment  = "Report by department"
	PromptBrowse              = "Browse alumni one by one"
	PromptResultsToFile       = "Dump recommendations to file"
	PromptAppendToExcludeFile = "Append all alumni to exclude file"
	PromptExit                = "Exit"
	PromptBack                = "back"

	excludeReason = "dismissed from recommendations"
)

var errExit = errors.New("exit requested")

var recommendCmd = &cobra.Command{
	Use:   "recommend [student-id] [top-k]",
	Short: "Rank alumni for a student",
	Args:  cobra.MaximumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		recommend(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(recommendCmd)

	recommendCmd.Flags().StringP("student", "s", "", "id of the student to recommend alumni for")
	recommendCmd.Flags().String("top-k", "", "maximum number of recommendations, 0 or less for all (default 10)")
	recommendCmd.Flags().String("threshold", "", "minimum similarity in [0, 1] (default 0.6)")
	recommendCmd.Flags().Bool("details", false, "explain every match (shared skills, interests, year gap)")
	recommendCmd.Flags().BoolP("interactive", "i", false, "pick the student and act on the results interactively")
	recommendCmd.Flags().StringP("exclude-file", "e", "", "special file with alumni to exclude. Default is unset.")

	viper.BindPFlag("recommend.top-k", recommendCmd.Flags().Lookup("top-k"))
	viper.BindPFlag("recommend.threshold", recommendCmd.Flags().Lookup("threshold"))
	viper.BindPFlag("recommend.details", recommendCmd.Flags().Lookup("details"))
	viper.BindPFlag("recommend.exclude-file", recommendCmd.Flags().Lookup("exclude-file"))
}

// failure is printed on stdout instead of the recommendations when the
// command cannot produce a result.
type failure struct {
	Error  string `json:"error"`
	Origin string `json:"origin"`
}

type recommendations struct {
	Recommendations []ranking.MatchResult `json:"recommendations"`
}

type request struct {
	StudentID   string
	TopK        string
	Interactive bool
}

func recommend(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		fail(cmd.OutOrStdout(), logger, err, "config")
	}

	req := parseRequest(cmd, args)
	if err := runRecommend(ctx, cmd.OutOrStdout(), config, req, logger); err != nil {
		if errors.Is(err, errExit) {
			return
		}
		fail(cmd.OutOrStdout(), logger, err, "recommend")
	}
}

// parseRequest reads the student id and top-k from flags, falling back to
// positional arguments.
func parseRequest(cmd *cobra.Command, args []string) request {
	req := request{}

	// a flag the command does not define reads as its zero value
	student, _ := cmd.Flags().GetString("student")
	req.StudentID = strings.TrimSpace(student)
	if req.StudentID == "" && len(args) > 0 {
		req.StudentID = strings.TrimSpace(args[0])
	}

	if cmd.Flags().Changed("top-k") {
		req.TopK, _ = cmd.Flags().GetString("top-k")
	} else if len(args) > 1 {
		req.TopK = args[1]
	}

	req.Interactive, _ = cmd.Flags().GetBool("interactive")

	return req
}

func runRecommend(ctx context.Context, out io.Writer, config *Config, req request, log *zap.Logger) error {
	log.Info("starting the alumni-matcher", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	log.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	rawTopK := req.TopK
	if rawTopK == "" {
		rawTopK = config.Recommend.TopK
	}
	topK := ranking.ResolveTopK(rawTopK, log)
	threshold := ranking.ResolveThreshold(config.Recommend.Threshold, log)

	canon, err := loadCanonicalizer(config.Departments)
	if err != nil {
		return err
	}

	storeCfg, err := storeConfig(config.Store)
	if err != nil {
		return err
	}

	st, err := store.Open(ctx, storeCfg, log)
	if err != nil {
		return fmt.Errorf("opening %s store: %w", storeCfg.Kind, err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Warn("closing the store", zap.Error(err))
		}
	}()

	studentID := req.StudentID
	if studentID == "" {
		if !req.Interactive {
			return errors.New("student id is required (pass it as an argument, with --student or use --interactive)")
		}
		studentID, err = pickStudent(ctx, st)
		if err != nil {
			return err
		}
	}

	log = logger.WithFields(log, logger.CommonFields(st.Name(), studentID)...)

	student, err := st.Student(ctx, studentID)
	if err != nil {
		return fmt.Errorf("loading student: %w", err)
	}
	if student == nil {
		log.Info("student not found, nothing to recommend")
		return writeRecommendations(out, nil)
	}

	alumni, err := st.Alumni(ctx)
	if err != nil {
		return fmt.Errorf("loading alumni: %w", err)
	}
	// the student never competes with themselves
	alumni = alumni.Keep(func(p *profile.Profile) bool { return p.ID != student.ID })

	log.Info("ranking alumni",
		zap.Int("candidates", alumni.Len()),
		zap.Int("top_k", topK),
		zap.Float64("threshold", threshold),
	)

	ranker := ranking.New(
		ranking.WithCanonicalizer(canon),
		ranking.WithFilters(prepareFilters(config.Recommend)...),
		ranking.WithDisabledFilters(config.Recommend.DisableFilters...),
		ranking.WithLogger(log),
	)

	results, err := ranker.Rank(ctx, student, alumni, topK, threshold)
	if err != nil {
		return err
	}

	log.Info("ranked alumni", zap.Int("count", len(results)))

	if config.Recommend.Details {
		results = ranking.WithDetails(canon, student, results)
	}

	if config.AI.Enabled && len(results) > 0 {
		introducer, err := newIntroducer(ctx, config.AI, log)
		if err != nil {
			log.Warn("skipping AI introductions", zap.Error(err))
		} else {
			results = ai.Enrich(ctx, introducer, student, results, log)
		}
	}

	if !req.Interactive || len(results) == 0 {
		return writeRecommendations(out, results)
	}

	return interact(out, &ranking.Results{Items: results}, config.Recommend.ExcludeFile, log)
}

func writeRecommendations(out io.Writer, results []ranking.MatchResult) error {
	if results == nil {
		results = []ranking.MatchResult{}
	}
	return json.NewEncoder(out).Encode(recommendations{Recommendations: results})
}

// fail reports err as the single failure object and exits with status 1.
func fail(out io.Writer, logger *zap.Logger, err error, origin string) {
	f := failureFor(err, origin)
	logger.Error("recommendation failed", zap.String("origin", f.Origin), zap.Error(err))

	// do not bother error: there is nothing left to report it to
	_ = json.NewEncoder(out).Encode(f)
	os.Exit(1)
}

func failureFor(err error, origin string) failure {
	var decodeErr *profile.DecodeError
	if errors.As(err, &decodeErr) && decodeErr.Origin != "" {
		origin = decodeErr.Origin
	}
	return failure{Error: err.Error(), Origin: origin}
}

func loadCanonicalizer(cfg *DepartmentsConfig) (*department.Canonicalizer, error) {
	if cfg == nil || strings.TrimSpace(cfg.SynonymsFile) == "" {
		return department.Default(), nil
	}

	table, err := department.LoadTable(cfg.SynonymsFile)
	if err != nil {
		return nil, err
	}
	canon, err := department.New(table)
	if err != nil {
		return nil, fmt.Errorf("synonyms file %q: %w", cfg.SynonymsFile, err)
	}
	return canon, nil
}

func storeConfig(cfg *StoreConfig) (store.Config, error) {
	out := store.Config{Kind: strings.ToLower(strings.TrimSpace(cfg.Kind))}

	if cfg.SQLite != nil {
		out.SQLite.Path = cfg.SQLite.Path
	}
	if cfg.JSON != nil {
		out.JSON.Path = cfg.JSON.Path
	}

	if out.Kind != "" && out.Kind != store.KindMongo {
		return out, nil
	}
	if out.Kind == "" {
		out.Kind = store.KindMongo
	}

	mongoCfg := cfg.Mongo
	if mongoCfg == nil {
		mongoCfg = &MongoConfig{}
	}

	uri, err := secrets.Load(secrets.Source{
		Name:  "mongo uri",
		File:  mongoCfg.URIFile,
		Value: mongoCfg.URI,
	})
	if err != nil {
		return out, fmt.Errorf("%w (set MONGO_URI or store.mongo.uri)", err)
	}

	out.Mongo = store.MongoConfig{
		URI:        uri,
		Database:   mongoCfg.Database,
		Collection: mongoCfg.Collection,
	}
	return out, nil
}

func prepareFilters(cfg *RecommendConfig) []filtering.Filter {
	var steps []filtering.Filter
	if len(cfg.Exclude) > 0 {
		steps = append(steps, filtering.NewExcludeIDs(cfg.Exclude))
	}
	if len(cfg.ExcludeCompanies) > 0 {
		steps = append(steps, filtering.NewExcludedCompanies(cfg.ExcludeCompanies))
	}
	if strings.TrimSpace(cfg.ExcludeFile) != "" {
		steps = append(steps, filtering.NewExcludeFile(cfg.ExcludeFile))
	}
	return steps
}

func newIntroducer(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Introducer, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, cfg.Gemini.MaxRetries,
		log.With(zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries)))
	if err != nil {
		return nil, err
	}

	// the generator resolves the default model, so log what it really uses
	introLogger := log.With(logger.AIFields("gemini", generator.Model())...)
	introLogger.Debug("ai introductions enabled", zap.String("tone", cfg.Tone))

	return gemini.NewIntroducer(generator, cfg.Tone, cfg.Gemini.MaxLogLength, introLogger), nil
}

func pickStudent(ctx context.Context, st store.Store) (string, error) {
	students, err := st.Students(ctx)
	if err != nil {
		return "", fmt.Errorf("loading students: %w", err)
	}
	if students.Len() == 0 {
		return "", errors.New("there are no students to choose from")
	}

	items := make([]string, 0, students.Len())
	for _, s := range students.Items {
		items = append(items, s.Label())
	}

	studentPrompt := promptui.Select{
		Label: "Choose a student and press ENTER",
		Items: items,
		Size:  10,
	}

	idx, _, err := studentPrompt.Run()
	if err != nil {
		return "", err
	}

	return students.Items[idx].ID, nil
}

func interact(out io.Writer, results *ranking.Results, excludeFile string, logger *zap.Logger) error {
	items := []string{PromptPrint, PromptReportByDepartment, PromptBrowse, PromptResultsToFile}
	if excludeFile != "" {
		items = append(items, PromptAppendToExcludeFile)
	}
	items = append(items, PromptExit)

	prompt := promptui.Select{
		Label: "Procced?",
		Items: items,
	}

	for {
		_, action, err := prompt.Run()
		if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
			return errExit
		}
		if err != nil {
			return err
		}

		logger.Info("current list of recommendations", zap.Int("count", results.Len()))

		if err := handleAction(action, out, results, excludeFile, logger); err != nil {
			return err
		}
	}
}

func handleAction(action string, out io.Writer, results *ranking.Results, excludeFile string, logger *zap.Logger) error {
	switch action {
	case PromptPrint:
		return writeRecommendations(out, results.Items)
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	case PromptReportByDepartment:
		pretty, _ := json.MarshalIndent(results.ReportByDepartment(), "", "  ")
		logger.Info(string(pretty), zap.Int("recommendations count", results.Len()))
		return nil
	case PromptBrowse:
		return browse(results, excludeFile, logger)
	case PromptResultsToFile:
		filename, err := results.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptAppendToExcludeFile:
		if err := appendToExcludeFile(excludeFile, results); err != nil {
			return err
		}
		logger.Info("appended to exclude file", zap.String("filename", excludeFile))
		return nil
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func browse(results *ranking.Results, excludeFile string, logger *zap.Logger) error {
	for {
		items := make([]string, 0, results.Len()+1)
		for _, m := range results.Items {
			items = append(items, fmt.Sprintf("%s %s / %s / %.3f", m.ID, m.Name, m.Department, m.Similarity))
		}

		alumniPrompt := promptui.Select{
			Label: "Choose an alumnus and press ENTER",
			Items: append(items, PromptBack),
		}

		idx, selected, err := alumniPrompt.Run()
		if err != nil {
			return err
		}
		if selected == PromptBack {
			return nil
		}

		match := results.Items[idx]
		pretty, _ := json.MarshalIndent(match, "", "  ")
		logger.Info(string(pretty))

		if excludeFile == "" {
			continue
		}

		confirm := promptui.Prompt{
			Label:     "Exclude this alumnus from future recommendations",
			IsConfirm: true,
		}
		if _, err := confirm.Run(); err != nil {
			// promptui reports a declined confirmation as an error
			continue
		}

		one := &ranking.Results{Items: []ranking.MatchResult{match}}
		if err := appendToExcludeFile(excludeFile, one); err != nil {
			return err
		}
		results.Items = slices.Delete(results.Items, idx, idx+1)
		logger.Info("appended to exclude file", zap.String("alumni_id", match.ID), zap.String("filename", excludeFile))
	}
}

func appendToExcludeFile(path string, results *ranking.Results) error {
	excluded, err := filtering.LoadExcludeFile(path)
	if err != nil {
		return err
	}

	excluded.Append(results.ToExcluded(excludeReason)...)

	return excluded.ToFile(path)
}
