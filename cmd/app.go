package main

import (
	"fmt"
	"path"

	"github.com/newcomb-luke/wustite/boot"
	"github.com/newcomb-luke/wustite/disk"
	"github.com/newcomb-luke/wustite/elf64"
	"github.com/newcomb-luke/wustite/emulator"
	"github.com/newcomb-luke/wustite/fat12"
	"github.com/newcomb-luke/wustite/fatimage"
	"github.com/newcomb-luke/wustite/imagefile"
	"github.com/newcomb-luke/wustite/memory"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

// application is the state shared by every command once flags and config are
// loaded.
type application struct {
	fs       afero.Fs
	settings Settings
	log      *zap.SugaredLogger
}

func newApp(fs afero.Fs) *cli.App {
	a := &application{fs: fs}

	return &cli.App{
		Name:  "wustite",
		Usage: "Build, inspect and boot FAT12 floppy images for the wustite boot loader",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "YAML config file"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
			&cli.StringFlag{Name: "log-format", Usage: "log format: json or human"},
		},
		Before: a.setUp,
		After:  a.tearDown,
		Commands: []*cli.Command{
			{
				Name:      "mkimage",
				Usage:     "Create a boot floppy holding a kernel",
				Action:    a.makeImage,
				ArgsUsage: "OUTPUT_FILE",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "kernel", Usage: "ELF64 kernel to install", Required: true},
					&cli.StringFlag{Name: "label", Usage: "volume label", Value: "WUSTITE"},
					&cli.StringFlag{Name: "geometry", Usage: "floppy format", Value: disk.DefaultGeometrySlug},
					&cli.StringFlag{Name: "boot-code", Usage: "first-stage loader to put in the boot sector"},
					&cli.StringSliceFlag{Name: "file", Usage: "extra file for the root directory"},
					&cli.BoolFlag{Name: "compress", Usage: "write an RLE8+gzip compressed image"},
				},
			},
			{
				Name:      "inspect",
				Usage:     "Describe an image's file system and kernel",
				Action:    a.inspectImage,
				ArgsUsage: "IMAGE_FILE",
			},
			{
				Name:      "boot",
				Usage:     "Run the boot loader against an image on an emulated PC",
				Action:    a.bootImage,
				ArgsUsage: "IMAGE_FILE",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "no-long-mode", Usage: "emulate a 32-bit-only CPU"},
					&cli.BoolFlag{Name: "a20-stuck", Usage: "emulate a firmware that can't enable A20"},
				},
			},
		},
	}
}

func (a *application) setUp(c *cli.Context) error {
	settings, err := LoadSettings(a.fs, c.String("config"))
	if err != nil {
		return err
	}
	if c.IsSet("debug") {
		settings.Debug = c.Bool("debug")
	}
	if c.IsSet("log-format") {
		settings.LogFormat = c.String("log-format")
	}
	a.settings = settings

	a.log, err = newLogger(settings.Debug, settings.LogFormat)
	return err
}

func imageArgument(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one image file, got %d arguments", c.NArg())
	}
	return c.Args().First(), nil
}

func (a *application) makeImage(c *cli.Context) error {
	output, err := imageArgument(c)
	if err != nil {
		return err
	}

	kernel, err := afero.ReadFile(a.fs, c.String("kernel"))
	if err != nil {
		return err
	}
	_, err = elf64.Parse(kernel)
	if err != nil {
		return fmt.Errorf("%s can't be booted: %w", c.String("kernel"), err)
	}

	options := fatimage.Options{
		GeometrySlug: c.String("geometry"),
		VolumeLabel:  c.String("label"),
	}
	if c.IsSet("boot-code") {
		options.BootCode, err = afero.ReadFile(a.fs, c.String("boot-code"))
		if err != nil {
			return err
		}
	}

	builder, err := fatimage.New(options)
	if err != nil {
		return err
	}
	for _, extra := range c.StringSlice("file") {
		data, err := afero.ReadFile(a.fs, extra)
		if err != nil {
			return err
		}
		err = builder.AddFile(path.Base(extra), data)
		if err != nil {
			return err
		}
	}
	err = builder.AddFile(a.settings.Boot.KernelName, kernel)
	if err != nil {
		return err
	}

	image, err := builder.Build()
	if err != nil {
		return err
	}

	format := imagefile.Raw
	if c.Bool("compress") {
		format = imagefile.Compressed
	}
	err = imagefile.Write(a.fs, output, image.Bytes, format)
	if err != nil {
		return err
	}

	a.log.Infow(
		"wrote image",
		"path", output,
		"format", format.String(),
		"kernel", a.settings.Boot.KernelName,
		"kernel_clusters", len(image.Chains[a.settings.Boot.KernelName]))
	return nil
}

// loadMachine reads an image and creates an emulated PC booting from it.
func (a *application) loadMachine(imagePath string, options emulator.Options) (*emulator.Machine, *memory.Arena, error) {
	options.MemoryBytes = a.settings.MemoryMegabytes << 20
	options.DriveNumber = a.settings.Boot.DriveNumber

	machine, err := emulator.NewFromFile(a.fs, imagePath, options)
	if err != nil {
		return nil, nil, err
	}
	arena, err := memory.NewArena(machine.Memory, memory.DefaultLayout)
	if err != nil {
		return nil, nil, err
	}
	return machine, arena, nil
}

func (a *application) inspectImage(c *cli.Context) error {
	imagePath, err := imageArgument(c)
	if err != nil {
		return err
	}
	machine, arena, err := a.loadMachine(imagePath, emulator.Options{})
	if err != nil {
		return err
	}

	device, err := disk.Initialize(machine, a.settings.Boot.DriveNumber)
	if err != nil {
		return err
	}
	volume, err := fat12.Mount(device, boot.VolumeBuffers(arena))
	if err != nil {
		return err
	}

	out := c.App.Writer
	index := volume.Index
	fmt.Fprintf(out, "Image:     %s\n", imagePath)
	fmt.Fprintf(out, "Geometry:  %d/%d/%d\n",
		device.Geometry.MaxCylinder+1, device.Geometry.Heads(), device.Geometry.MaxSector)
	fmt.Fprintf(out, "Label:     %s\n", volume.Label())
	fmt.Fprintf(out, "OEM:       %s\n", volume.BootRecord().OEM())
	fmt.Fprintf(out, "Clusters:  %d of %d bytes\n", index.TotalClusters, index.BytesPerCluster)
	fmt.Fprintf(out, "Root:      LBA %d, %d entries\n", index.RootDirStart, index.RootEntryCount)
	fmt.Fprintln(out, "Files:")
	err = volume.List(func(entry fat12.DirectoryEntry) error {
		if entry.IsDirectory() {
			fmt.Fprintf(out, "  %-12s %10s\n", entry.Name(), "<DIR>")
		} else {
			fmt.Fprintf(out, "  %-12s %10d  cluster %d\n", entry.Name(), entry.FileSize, entry.FirstCluster)
		}
		return nil
	})
	if err != nil {
		return err
	}

	file, err := volume.OpenFile(a.settings.Boot.KernelName)
	if err != nil {
		fmt.Fprintf(out, "Kernel:    %s\n", err)
		return nil
	}
	kernelBuffer := arena.Region(arena.Layout().KernelFile)
	read, err := volume.ReadFile(file, kernelBuffer, file.Size)
	if err != nil {
		return err
	}
	kernel, err := elf64.Parse(kernelBuffer[:read])
	if err != nil {
		fmt.Fprintf(out, "Kernel:    %s\n", err)
		return nil
	}
	fmt.Fprintf(out, "Kernel:    %s\n", kernel.Describe())
	return nil
}

func (a *application) bootImage(c *cli.Context) error {
	imagePath, err := imageArgument(c)
	if err != nil {
		return err
	}
	machine, arena, err := a.loadMachine(imagePath, emulator.Options{
		NoLongMode:    c.Bool("no-long-mode"),
		A20Stuck:      c.Bool("a20-stuck"),
		ConsoleOutput: c.App.Writer,
	})
	if err != nil {
		return err
	}

	console := boot.NewConsoleLogger(machine, consoleLevel(a.settings.Debug))
	loader, err := boot.NewLoader(machine, arena, a.settings.Boot, console)
	if err != nil {
		return err
	}

	a.log.Debugw("booting", "image", imagePath, "drive", a.settings.Boot.DriveNumber)
	transfer, err := machine.Run(loader.Run)
	if err != nil {
		return err
	}

	fmt.Fprintf(
		c.App.Writer,
		"kernel started: entry %#x, page tables at %#x, %d sector reads\n",
		transfer.EntryPoint,
		transfer.PageTableRoot,
		machine.Reads)
	return nil
}
