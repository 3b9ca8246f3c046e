package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"github.com/Capstone-E1/aquasmart_calculators/internal/models"
	"github.com/Capstone-E1/aquasmart_calculators/internal/services"
)

func main() {
	mode := flag.String("mode", "sdi", "calculator to run: sdi or scaling")

	ti := flag.String("ti", "", "SDI: time to collect the initial sample, seconds")
	tf := flag.String("tf", "", "SDI: time to collect the final sample, seconds")
	duration := flag.String("duration", models.DefaultTotalDuration, "SDI: total test duration, minutes")

	tds := flag.String("tds", "", "Scaling: total dissolved solids, ppm")
	temp := flag.String("temp", "", "Scaling: temperature, °C")
	cah := flag.String("cah", "", "Scaling: calcium hardness, ppm as CaCO3")
	malk := flag.String("malk", "", "Scaling: M-alkalinity, ppm as CaCO3")
	ph := flag.String("ph", "", "Scaling: actual pH")
	verbose := flag.Bool("v", false, "log the parsed inputs alongside the result")
	flag.Parse()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	switch *mode {
	case "sdi":
		in, err := services.ParseSDIInput(models.SDIRawInput{TI: *ti, TF: *tf, TotalDuration: *duration})
		if err != nil {
			fail(err)
		}
		result, err := services.CalculateSDI(in)
		if err != nil {
			fail(err)
		}
		if *verbose {
			log.Printf("🧮 %s", services.FormatSDIResult(in, result))
		}
		fmt.Fprintf(w, "SDI\t%.2f\n", result.Value)
		fmt.Fprintf(w, "Interpretation\t%s\n", result.Interpretation)
		fmt.Fprintf(w, "Recommendation\t%s\n", result.Recommendation)

	case "scaling":
		result, err := services.ComputeScaling(models.ScalingRawInput{TDS: *tds, Temp: *temp, CaH: *cah, MAlk: *malk, PH: *ph})
		if err != nil {
			fail(err)
		}
		if *verbose {
			log.Printf("🧪 %s", services.FormatScalingResult(result))
		}
		fmt.Fprintf(w, "Index\tValue\tCondition\n")
		fmt.Fprintf(w, "pHs\t%.2f\t\n", result.PHs)
		fmt.Fprintf(w, "LSI\t%.2f\t%s\n", result.LSI, result.Conditions.LSI)
		fmt.Fprintf(w, "RSI\t%.2f\t%s\n", result.RSI, result.Conditions.RSI)
		fmt.Fprintf(w, "PSI\t%.2f\t%s\n", result.PSI, result.Conditions.PSI)
		fmt.Fprintf(w, "SDSI\t%.2f\t%s\n", result.SDSI, result.Conditions.SDSI)

	default:
		log.Fatalf("❌ Unknown mode %q, use sdi or scaling", *mode)
	}
}

func fail(err error) {
	if ve, ok := models.AsValidationError(err); ok {
		log.Fatalf("❌ %s (%s: %s)", ve.Message, ve.Kind, ve.Field)
	}
	log.Fatalf("❌ %v", err)
}
