// Package owners maps well-known pool tags to the component that owns
// them. It is a static enrichment table for display only; the analysis
// pipeline never consults it.
package owners

import "github.com/pooltrack/pooltrack/internal/pooltag"

// knownOwners covers the tags that most commonly dominate pool usage.
// Sourced from the published pooltag.txt conventions; deliberately small,
// this is a hint column, not a database.
var knownOwners = map[pooltag.Tag]string{
	pooltag.TagFromString("Ntf"):  "ntfs.sys (NTFS metadata)",
	pooltag.TagFromString("NtfF"): "ntfs.sys (NTFS FCBs)",
	pooltag.TagFromString("NtFs"): "ntfs.sys (NTFS general)",
	pooltag.TagFromString("FMfn"): "fltmgr.sys (filter manager names)",
	pooltag.TagFromString("FMsl"): "fltmgr.sys (stream list ctrl)",
	pooltag.TagFromString("File"): "kernel (file objects)",
	pooltag.TagFromString("Irp"):  "kernel (I/O request packets)",
	pooltag.TagFromString("Mdl"):  "kernel (memory descriptor lists)",
	pooltag.TagFromString("MmSt"): "kernel (section prototype PTEs)",
	pooltag.TagFromString("MmCa"): "kernel (control areas)",
	pooltag.TagFromString("Vad"):  "kernel (virtual address descriptors)",
	pooltag.TagFromString("Thre"): "kernel (thread objects)",
	pooltag.TagFromString("Proc"): "kernel (process objects)",
	pooltag.TagFromString("Toke"): "kernel (security tokens)",
	pooltag.TagFromString("Even"): "kernel (event objects)",
	pooltag.TagFromString("Key"):  "kernel (registry key objects)",
	pooltag.TagFromString("CM25"): "kernel (registry key cache)",
	pooltag.TagFromString("Pool"): "kernel (pool tables)",
	pooltag.TagFromString("AfdB"): "afd.sys (socket buffers)",
	pooltag.TagFromString("AfdC"): "afd.sys (socket connections)",
	pooltag.TagFromString("TcpE"): "tcpip.sys (TCP endpoints)",
	pooltag.TagFromString("TNbl"): "tcpip.sys (NBL trackers)",
	pooltag.TagFromString("NDnd"): "ndis.sys (NDIS net buffers)",
	pooltag.TagFromString("Dxgk"): "dxgkrnl.sys (DirectX graphics kernel)",
	pooltag.TagFromString("Vi01"): "dxgmms2.sys (video memory manager)",
	pooltag.TagFromString("ConT"): "condrv.sys (console)",
	pooltag.TagFromString("smNp"): "store manager (nonpaged)",
	pooltag.TagFromString("SmMs"): "store manager (virtual store)",
}

// Lookup returns the owning component for a known tag, or "" when the tag
// is not in the table.
func Lookup(tag pooltag.Tag) string {
	return knownOwners[tag]
}
