package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/a64core/emu"
)

var _ = Describe("FeatureSet", func() {
	It("enables only the features passed to NewFeatureSet", func() {
		fs := emu.NewFeatureSet(emu.FeatureFP, emu.FeatureLSE)

		Expect(fs.Has(emu.FeatureFP)).To(BeTrue())
		Expect(fs.Has(emu.FeatureLSE)).To(BeTrue())
		Expect(fs.Has(emu.FeatureSVE)).To(BeFalse())
	})

	It("Set/Clear toggle individual features", func() {
		fs := emu.NewFeatureSet()
		fs.Set(emu.FeatureSVE)
		Expect(fs.Has(emu.FeatureSVE)).To(BeTrue())
		fs.Clear(emu.FeatureSVE)
		Expect(fs.Has(emu.FeatureSVE)).To(BeFalse())
	})

	It("Configure stops at the FeatureNone sentinel", func() {
		fs := emu.NewFeatureSet(emu.FeatureSVE)
		fs.Configure([]emu.Feature{emu.FeatureFP, emu.FeatureNone, emu.FeatureLSE})

		Expect(fs.Has(emu.FeatureFP)).To(BeTrue())
		Expect(fs.Has(emu.FeatureLSE)).To(BeFalse())
		Expect(fs.Has(emu.FeatureSVE)).To(BeFalse())
	})

	It("Save/Restore round-trips a snapshot", func() {
		fs := emu.NewFeatureSet(emu.FeatureFP)
		fs.Save()
		fs.Set(emu.FeatureSVE)
		Expect(fs.Has(emu.FeatureSVE)).To(BeTrue())

		fs.Restore()
		Expect(fs.Has(emu.FeatureSVE)).To(BeFalse())
		Expect(fs.Has(emu.FeatureFP)).To(BeTrue())
	})

	It("Restore on an empty stack is a no-op", func() {
		fs := emu.NewFeatureSet(emu.FeatureFP)
		Expect(func() { fs.Restore() }).NotTo(Panic())
		Expect(fs.Has(emu.FeatureFP)).To(BeTrue())
	})

	Describe("String/ParseFeature round-trip", func() {
		It("recovers every named feature from its own string form", func() {
			for _, f := range []emu.Feature{
				emu.FeatureFP, emu.FeatureFP16, emu.FeatureSVE, emu.FeatureSVE2,
				emu.FeaturePACA, emu.FeaturePACB, emu.FeatureRCpc, emu.FeatureLSE,
				emu.FeatureCRC32, emu.FeatureDotProd, emu.FeatureJSCVT,
			} {
				parsed, ok := emu.ParseFeature(f.String())
				Expect(ok).To(BeTrue())
				Expect(parsed).To(Equal(f))
			}
		})

		It("reports ok=false for an unrecognized name", func() {
			_, ok := emu.ParseFeature("not-a-real-feature")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("All", func() {
		It("returns exactly the enabled set, sorted", func() {
			fs := emu.NewFeatureSet(emu.FeatureLSE, emu.FeatureFP)
			all := fs.All()

			Expect(all).To(HaveLen(2))
			Expect(all[0] < all[1] || all[0] == all[1]).To(BeTrue())
		})
	})
})

var _ = Describe("ParseTraceMask", func() {
	It("ORs together the named categories", func() {
		mask, err := emu.ParseTraceMask([]string{"regs", "branch"})

		Expect(err).NotTo(HaveOccurred())
		Expect(mask & emu.TraceREGS).NotTo(BeZero())
		Expect(mask & emu.TraceBRANCH).NotTo(BeZero())
		Expect(mask & emu.TraceDISASM).To(BeZero())
	})

	It("errors on an unknown category", func() {
		_, err := emu.ParseTraceMask([]string{"bogus"})
		Expect(err).To(HaveOccurred())
	})
})
