package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/kerrtrace/internal/config"
	"github.com/san-kum/kerrtrace/internal/experiment"
	"github.com/san-kum/kerrtrace/internal/export"
	"github.com/san-kum/kerrtrace/internal/logging"
	"github.com/san-kum/kerrtrace/internal/render"
	"github.com/san-kum/kerrtrace/internal/storage"
	"github.com/san-kum/kerrtrace/internal/viz"
)

var (
	dataDir  string
	logLevel string
	verbose  bool

	configFile   string
	preset       string
	spin         float64
	inclination  float64
	npix         int
	fov          float64
	nmax         int
	factor       int
	observerDist float64
	stationary   bool
	profile      string
	opticalDepth string
	boost        float64
	chi          float64
	fieldIota    float64
	spec         float64
	saveConfig   string
	noSave       bool

	pngOut   string
	jsonOut  string
	svgOut   string
	gifOut   string
	showSize int
	pngSize  int
	svgSize  int
	gifSize  int
	smooth   bool
	stride   int
	cut      float64
	delay    int
	orders   bool

	benchSizes []int

	log *logrus.Logger
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "kerrtrace",
		Short: "closed-form Kerr ray tracer and polarized image synthesizer",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			log = logging.New(logLevel, verbose)
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".kerrtrace", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	traceCmd := &cobra.Command{
		Use:   "trace [name]",
		Short: "trace an image and store it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTrace,
	}
	addTraceFlags(traceCmd)
	traceCmd.Flags().StringVar(&saveConfig, "save-config", "", "write the effective config to this path")
	traceCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	showCmd := &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata and a preview",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
	showCmd.Flags().IntVar(&showSize, "size", 48, "preview width in cells")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot intensity cuts and order radii",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportPNGCmd := &cobra.Command{
		Use:   "export-png [run_id]",
		Short: "export Stokes maps as PNG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportPNG,
	}
	exportPNGCmd.Flags().StringVarP(&pngOut, "out", "o", ".", "output directory")
	exportPNGCmd.Flags().IntVar(&pngSize, "size", 512, "output size in px")
	exportPNGCmd.Flags().BoolVar(&smooth, "smooth", false, "Catmull-Rom scaling")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export images and metrics to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&jsonOut, "out", "o", "", "output file (stdout if empty)")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export intensity with EVPA ticks as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&svgOut, "out", "o", "", "output file (default <run_id>.svg)")
	exportSVGCmd.Flags().IntVar(&svgSize, "size", 512, "output size in px")
	exportSVGCmd.Flags().IntVar(&stride, "stride", 0, "pixels per tick (0 picks dim/16)")
	exportSVGCmd.Flags().Float64Var(&cut, "cut", 0.05, "hide ticks below this fraction of peak intensity")

	exportGIFCmd := &cobra.Command{
		Use:   "export-gif [run_id]",
		Short: "animate the intensity over observation times",
		Args:  cobra.ExactArgs(1),
		RunE:  exportGIF,
	}
	exportGIFCmd.Flags().StringVarP(&gifOut, "out", "o", "", "output file (default <run_id>.gif)")
	exportGIFCmd.Flags().IntVar(&gifSize, "size", 256, "output size in px")
	exportGIFCmd.Flags().IntVar(&delay, "delay", 20, "frame delay in 1/100 s")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSPIN\tINC\tNPIX\tNMAX\tPROFILE\tSTATIONARY")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%.2f\t%.0f°\t%d\t%d\t%s\t%v\n",
					name, p.Spin, p.Inclination, p.Npix, p.Nmax, p.Image.Profile, p.Stationary)
			}
			return w.Flush()
		},
	}

	viewCmd := &cobra.Command{
		Use:   "view [run_id]",
		Short: "interactive terminal viewer",
		Args:  cobra.MaximumNArgs(1),
		RunE:  viewRun,
	}
	addTraceFlags(viewCmd)
	viewCmd.Flags().BoolVar(&orders, "orders", true, "keep per-order maps when tracing on the fly")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time the engine over grid sizes",
		RunE:  benchEngine,
	}
	addTraceFlags(benchCmd)
	benchCmd.Flags().IntSliceVar(&benchSizes, "sizes", []int{32, 64, 128}, "grid sizes")

	rootCmd.AddCommand(traceCmd, listCmd, showCmd, plotCmd, exportPNGCmd, exportJSONCmd, exportSVGCmd, exportGIFCmd, presetsCmd, viewCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addTraceFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.Float64Var(&spin, "spin", d.Spin, "black hole spin a in [0, 1)")
	f.Float64Var(&inclination, "inc", d.Inclination, "observer inclination in degrees")
	f.IntVar(&npix, "npix", d.Npix, "pixels per side")
	f.Float64Var(&fov, "fov", d.FOV, "field of view in M")
	f.IntVar(&nmax, "nmax", d.Nmax, "highest sub-image order")
	f.IntVar(&factor, "factor", d.AdaptiveFactor, "adaptive refinement factor per order")
	f.Float64Var(&observerDist, "distance", 0, "observer distance in M (0 is infinity)")
	f.BoolVar(&stationary, "stationary", d.Stationary, "skip coordinate time")
	f.StringVar(&profile, "profile", d.Image.Profile, "emissivity profile")
	f.StringVar(&opticalDepth, "optical-depth", d.Image.OpticalDepth, "thin, varying or thick")
	f.Float64Var(&boost, "boost", d.Fluid.Boost, "fluid speed in the ZAMO frame")
	f.Float64Var(&chi, "chi", d.Fluid.Chi, "boost direction in degrees")
	f.Float64Var(&fieldIota, "iota", d.Fluid.Iota, "field inclination in degrees")
	f.Float64Var(&spec, "spec", d.Fluid.Spec, "spectral index")
}

// resolveConfig layers preset, config file and explicitly set flags.
func resolveConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	name := "run"

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg, name = p, preset
	}

	if configFile != "" {
		c, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = c
		name = trimExt(filepath.Base(configFile))
	}

	fl := cmd.Flags()
	if fl.Changed("spin") {
		cfg.Spin = spin
	}
	if fl.Changed("inc") {
		cfg.Inclination = inclination
	}
	if fl.Changed("npix") {
		cfg.Npix = npix
	}
	if fl.Changed("fov") {
		cfg.FOV = fov
	}
	if fl.Changed("nmax") {
		cfg.Nmax = nmax
	}
	if fl.Changed("factor") {
		cfg.AdaptiveFactor = factor
	}
	if fl.Changed("distance") {
		cfg.ObserverDistance = observerDist
	}
	if fl.Changed("stationary") {
		cfg.Stationary = stationary
	}
	if fl.Changed("profile") {
		cfg.Image.Profile = profile
	}
	if fl.Changed("optical-depth") {
		cfg.Image.OpticalDepth = opticalDepth
	}
	if fl.Changed("boost") {
		cfg.Fluid.Boost = boost
	}
	if fl.Changed("chi") {
		cfg.Fluid.Chi = chi
	}
	if fl.Changed("iota") {
		cfg.Fluid.Iota = fieldIota
	}
	if fl.Changed("spec") {
		cfg.Fluid.Spec = spec
	}
	return cfg, name, nil
}

func trimExt(s string) string {
	return s[:len(s)-len(filepath.Ext(s))]
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

func runTrace(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	if len(args) > 0 {
		name = args[0]
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Println(headerStyle.Render(fmt.Sprintf("tracing %s", name)))
	exp := experiment.New(cfg, log)
	out, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	cfg = exp.Config()

	if saveConfig != "" {
		if err := config.Save(saveConfig, cfg); err != nil {
			return fmt.Errorf("save config: %w", err)
		}
	}

	printSummary(out)

	if noSave {
		return nil
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	runID, err := st.Save(out.Run(name, cfg))
	if err != nil {
		return err
	}
	fmt.Printf("\n%s %s\n", labelStyle.Render("run id"), valueStyle.Render(runID))
	return nil
}

func printSummary(out *experiment.Outcome) {
	fmt.Printf("%s %s\n", labelStyle.Render("elapsed"), valueStyle.Render(out.Result.Elapsed.Round(time.Millisecond).String()))
	fmt.Printf("%s %s\n", labelStyle.Render("frames"), valueStyle.Render(fmt.Sprint(len(out.Images))))
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ORDER\tDIM\tVALID\tFRACTION\tR MIN\tR MEAN\tR MAX\tMEAN g")
	for _, o := range out.Orders {
		fmt.Fprintf(w, "%d\t%d\t%d\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\n",
			o.N, o.Dim, o.Valid, o.Fraction, o.MinRadius, o.MeanRadius, o.MaxRadius, o.MeanRedshift)
	}
	w.Flush()

	fmt.Println()
	for _, s := range out.Metrics {
		fmt.Printf("%s %s\n", labelStyle.Render(s.Name), valueStyle.Render(fmt.Sprintf("%.6g", s.Value)))
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSPIN\tINC\tDIM\tORDERS\tFLUX\tM_NET\tELAPSED")
	for _, run := range runs {
		spin, inc := 0.0, 0.0
		if run.Config != nil {
			spin, inc = run.Config.Spin, run.Config.Inclination
		}
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%.0f°\t%d\t%d\t%.4g\t%.4f\t%.2fs\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			spin,
			inc,
			run.Dim,
			len(run.Orders),
			run.Metrics["flux"],
			run.Metrics["m_net"],
			run.Elapsed,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	if err := export.WriteJSON(os.Stdout, export.ExportData{Name: meta.Name, Dim: meta.Dim, Config: meta.Config}); err != nil {
		return err
	}
	if len(meta.Times) == 0 {
		return nil
	}
	img, err := st.LoadImage(runID, 0)
	if err != nil {
		return err
	}
	fmt.Println(viz.Shade(img.I, img.Dim, showSize, viz.CurrentTheme, viz.Linear))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	if len(meta.Times) == 0 {
		return fmt.Errorf("no image to plot")
	}
	img, err := st.LoadImage(runID, 0)
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("dim: %d\n\n", meta.Dim)

	mid := img.Dim / 2
	horiz := img.I[mid*img.Dim : (mid+1)*img.Dim]
	vert := make([]float64, img.Dim)
	for i := range vert {
		vert[i] = img.I[i*img.Dim+mid]
	}
	fmt.Println(viz.PlotSeries([][]float64{horiz, vert}, "intensity along alpha (yellow) and beta (cyan)", 80, 10))
	fmt.Println()

	radii := make([][]float64, 0, len(meta.Orders))
	for _, o := range meta.Orders {
		cs, err := st.LoadOrder(runID, o.N)
		if err != nil {
			return err
		}
		r := make([]float64, len(cs))
		for k, c := range cs {
			r[k] = c.R
		}
		radii = append(radii, histogram(r, 40))
	}
	fmt.Println(viz.PlotSeries(radii, "emission radius distribution per order", 80, 10))
	return nil
}

// histogram bins vals over their own range.
func histogram(vals []float64, bins int) []float64 {
	if len(vals) == 0 {
		return nil
	}
	lo, hi := vals[0], vals[0]
	for _, v := range vals {
		lo, hi = min(lo, v), max(hi, v)
	}
	h := make([]float64, bins)
	if hi == lo {
		h[0] = float64(len(vals))
		return h
	}
	for _, v := range vals {
		k := int(float64(bins) * (v - lo) / (hi - lo))
		h[min(k, bins-1)]++
	}
	return h
}

func loadImages(st *storage.Store, runID string) (*storage.RunMetadata, []render.Image, error) {
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	images := make([]render.Image, len(meta.Times))
	for k := range images {
		if images[k], err = st.LoadImage(runID, k); err != nil {
			return nil, nil, err
		}
	}
	if len(images) == 0 {
		return nil, nil, storage.ErrNoImage
	}
	return meta, images, nil
}

func exportPNG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	_, images, err := loadImages(storage.New(dataDir), runID)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(pngOut, 0755); err != nil {
		return err
	}
	for k, img := range images {
		prefix := runID
		if len(images) > 1 {
			prefix = fmt.Sprintf("%s_t%03d", runID, k)
		}
		paths, err := export.StokesPNG(pngOut, prefix, img, export.PNGOptions{Size: pngSize, Smooth: smooth, Label: true})
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Printf("wrote %s\n", p)
		}
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]
	meta, images, err := loadImages(storage.New(dataDir), runID)
	if err != nil {
		return err
	}
	data := export.NewExportData(meta.Name, meta.Config, images, false)
	if jsonOut == "" {
		return export.WriteJSON(os.Stdout, data)
	}
	if err := export.ExportJSON(jsonOut, data); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", jsonOut)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	_, images, err := loadImages(storage.New(dataDir), runID)
	if err != nil {
		return err
	}
	path := svgOut
	if path == "" {
		path = runID + ".svg"
	}
	svg := export.EVPATicks(images[0], export.SVGOptions{Size: svgSize, Stride: stride, Cut: cut})
	if err := os.WriteFile(path, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func exportGIF(cmd *cobra.Command, args []string) error {
	runID := args[0]
	_, images, err := loadImages(storage.New(dataDir), runID)
	if err != nil {
		return err
	}
	path := gifOut
	if path == "" {
		path = runID + ".gif"
	}
	if err := export.WriteGIF(path, images, gifSize, delay); err != nil {
		return err
	}
	fmt.Printf("wrote %s (%d frames)\n", path, len(images))
	return nil
}

func viewRun(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		meta, images, err := loadImages(storage.New(dataDir), args[0])
		if err != nil {
			return err
		}
		return viz.RunViewer(meta.ID, images)
	}

	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	out, err := experiment.New(cfg, log).Run(ctx)
	if err != nil {
		return err
	}
	images := out.Images
	if !orders {
		for k := range images {
			images[k].Orders = nil
		}
	}
	return viz.RunViewer(name, images)
}

func benchEngine(cmd *cobra.Command, args []string) error {
	base, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("benchmarking %s\n\n", name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NPIX\tRAYS\tCROSSINGS\tTIME\tRAYS/SEC")

	for _, n := range benchSizes {
		cfg := base.Clone()
		cfg.Npix = n

		start := time.Now()
		out, err := experiment.New(cfg, log).Run(ctx)
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		rays, crossings := 0, 0
		for _, o := range out.Orders {
			rays += o.Dim * o.Dim
			crossings += o.Valid
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%v\t%.0f\n",
			n, rays, crossings, elapsed.Round(time.Millisecond), float64(rays)/elapsed.Seconds())
	}
	return w.Flush()
}
