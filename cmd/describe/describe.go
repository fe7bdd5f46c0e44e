package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/akamensky/argparse"
	"github.com/bmharper/cimg/v2"
	"github.com/chewxy/math32"
	"github.com/cyclopcam/logs"
	"github.com/mkutny/menpo/pkg/features"
	"github.com/mkutny/menpo/pkg/ndimage"
)

func check(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

type result struct {
	Feature string       `json:"feature"`
	Shape   []int        `json:"shape"`
	Centers [][2]float64 `json:"centers,omitempty"`
	Data    []float64    `json:"data"`
}

func main() {
	parser := argparse.NewParser("describe", "Compute a local image descriptor for an image file")
	input := parser.String("i", "input", &argparse.Options{Help: "Input image file", Required: true})
	feature := parser.Selector("f", "feature", []string{"hog", "lbp", "igo", "es", "gradient", "noop"}, &argparse.Options{Help: "Descriptor to compute", Required: false, Default: "hog"})
	output := parser.String("o", "output", &argparse.Options{Help: "Output JSON file (default stdout)", Required: false})
	preview := parser.String("", "preview", &argparse.Options{Help: "Write a grayscale descriptor-energy preview image (JPEG)", Required: false})
	verbose := parser.Flag("v", "verbose", &argparse.Options{Help: "Log descriptor details", Required: false})
	mode := parser.Selector("", "mode", []string{"dense", "sparse"}, &argparse.Options{Help: "HOG mode", Required: false, Default: "dense"})
	algorithm := parser.Selector("", "algorithm", []string{"dalaltriggs", "zhuramanan"}, &argparse.Options{Help: "HOG algorithm", Required: false, Default: "dalaltriggs"})
	numBins := parser.Int("", "bins", &argparse.Options{Help: "HOG orientation bins", Required: false, Default: 9})
	cellSize := parser.Int("", "cellsize", &argparse.Options{Help: "HOG/LBP cell size in pixels", Required: false, Default: 8})
	blockSize := parser.Int("", "blocksize", &argparse.Options{Help: "HOG block size in cells", Required: false, Default: 2})
	clip := parser.Float("", "clip", &argparse.Options{Help: "HOG L2-norm clip", Required: false, Default: 0.2})
	stepV := parser.Int("", "stepv", &argparse.Options{Help: "Vertical window step in pixels", Required: false, Default: 1})
	stepH := parser.Int("", "steph", &argparse.Options{Help: "Horizontal window step in pixels", Required: false, Default: 1})
	noPadding := parser.Flag("", "nopad", &argparse.Options{Help: "Disable boundary-window padding", Required: false})
	radius := parser.String("", "radius", &argparse.Options{Help: "LBP radii, comma separated", Required: false, Default: "1,2,3,4"})
	samples := parser.String("", "samples", &argparse.Options{Help: "LBP sample counts, comma separated", Required: false, Default: "8,8,8,8"})
	mapping := parser.Selector("", "mapping", []string{"u2", "ri", "riu2", "none"}, &argparse.Options{Help: "LBP mapping type", Required: false, Default: "riu2"})
	doubleAngles := parser.Flag("", "double-angles", &argparse.Options{Help: "IGO double-angle channels", Required: false})
	err := parser.Parse(os.Args)
	if err != nil {
		fmt.Print(parser.Usage(err))
		os.Exit(1)
	}

	var logger logs.Log
	if *verbose {
		logger, _ = logs.NewLog()
	}

	src, err := cimg.ReadFile(*input)
	check(err)
	img := ndimage.FromImage(src)

	res := result{Feature: *feature}
	switch *feature {
	case "hog":
		opts := features.NewHOGOptions()
		if *mode == "sparse" {
			opts.Mode = features.ModeSparse
		}
		if *algorithm == "zhuramanan" {
			opts.Algorithm = features.ZhuRamanan
		}
		opts.NumBins = *numBins
		opts.CellSize = *cellSize
		opts.BlockSize = *blockSize
		opts.L2NormClip = *clip
		opts.WindowStepVertical = *stepV
		opts.WindowStepHorizontal = *stepH
		opts.Padding = !*noPadding
		opts.Log = logger
		desc, err := features.HOG(img, opts)
		check(err)
		fillWindowed(&res, desc)
	case "lbp":
		opts := features.NewLBPOptions()
		opts.Radius, err = parseIntList(*radius)
		check(err)
		opts.Samples, err = parseIntList(*samples)
		check(err)
		opts.Mapping = parseMapping(*mapping)
		opts.WindowStepVertical = *stepV
		opts.WindowStepHorizontal = *stepH
		opts.Padding = !*noPadding
		opts.Log = logger
		desc, err := features.LBP(img, opts)
		check(err)
		fillWindowed(&res, desc)
	case "igo":
		arr, err := features.IGO(img, *doubleAngles)
		check(err)
		fillArray(&res, arr)
	case "es":
		arr, err := features.ES(img)
		check(err)
		fillArray(&res, arr)
	case "gradient":
		arr, err := features.Gradient(img, true)
		check(err)
		fillArray(&res, arr)
	case "noop":
		fillArray(&res, features.NoOp(img))
	}

	if *preview != "" {
		check(writePreview(*preview, res.Shape, res.Data))
	}

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		check(err)
		defer f.Close()
		out = f
	}
	encoder := json.NewEncoder(out)
	err = encoder.Encode(&res)
	check(err)
}

func fillWindowed(res *result, desc *features.Descriptor) {
	res.Shape = desc.Pixels.Shape
	res.Data = desc.Pixels.Data
	res.Centers = make([][2]float64, len(desc.Centers))
	for i, c := range desc.Centers {
		res.Centers[i] = [2]float64{c.Y, c.X}
	}
}

func fillArray(res *result, arr *ndimage.Array) {
	res.Shape = arr.Shape
	res.Data = arr.Data
}

func parseIntList(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("bad integer list %q: %w", s, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseMapping(s string) features.MappingType {
	switch s {
	case "u2":
		return features.MappingU2
	case "ri":
		return features.MappingRI
	case "riu2":
		return features.MappingRIU2
	}
	return features.MappingNone
}

// writePreview tone-maps the per-position feature energy to an 8-bit
// grayscale JPEG. Useful for eyeballing where a descriptor has signal.
func writePreview(path string, shape []int, data []float64) error {
	if len(shape) != 3 {
		return fmt.Errorf("preview needs a rank-3 descriptor, got shape %v", shape)
	}
	channels, height, width := shape[0], shape[1], shape[2]
	plane := height * width
	energy := make([]float32, plane)
	maxEnergy := float32(0)
	for p := 0; p < plane; p++ {
		sum := float32(0)
		for c := 0; c < channels; c++ {
			v := float32(data[c*plane+p])
			sum += v * v
		}
		energy[p] = math32.Sqrt(sum)
		maxEnergy = math32.Max(maxEnergy, energy[p])
	}
	gray := make([]float64, plane)
	if maxEnergy > 0 {
		for p := 0; p < plane; p++ {
			gray[p] = float64(energy[p] / maxEnergy)
		}
	}
	out := ndimage.FromSlice(gray, 1, height, width)
	img, err := ndimage.ToImageRGB(out)
	if err != nil {
		return err
	}
	jpg, err := cimg.Compress(img, cimg.MakeCompressParams(cimg.Sampling420, 90, 0))
	if err != nil {
		return err
	}
	return os.WriteFile(path, jpg, 0664)
}
