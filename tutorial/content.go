package tutorial

import "github.com/sarchlab/memsim/mem"

func intPtr(v int) *int {
	return &v
}

func expectAllocate(size int) *ExpectedOperation {
	return &ExpectedOperation{Kind: mem.OpAllocate, Size: intPtr(size)}
}

func expectAccess(address int) *ExpectedOperation {
	return &ExpectedOperation{Kind: mem.OpAccess, Address: intPtr(address)}
}

func expectDeallocate() *ExpectedOperation {
	return &ExpectedOperation{Kind: mem.OpDeallocate}
}

func builtinTutorials() []Tutorial {
	return []Tutorial{
		introTutorial(),
		fragmentationTutorial(),
		pageReplacementTutorial(),
		optimizationTutorial(),
	}
}

func introTutorial() Tutorial {
	return Tutorial{
		ID:          "intro",
		Title:       "Introduction to Memory Management",
		Description: "Learn the basics of memory allocation and management",
		Steps: []Step{
			{
				Title: "Welcome to Memory Management",
				Content: "In this tutorial, you will learn how memory is " +
					"allocated and managed in computer systems.",
				Task: `Click "Next" to continue.`,
				Config: &StepConfig{
					MemorySize: 512,
					PageSize:   64,
					Technique:  mem.TechniquePaging,
					Algorithm:  mem.AlgorithmFIFO,
				},
			},
			{
				Title: "Memory Allocation",
				Content: "Memory allocation is the process of assigning " +
					"memory space for program data and instructions.",
				Task: `Allocate 128 bytes of memory by entering "128" in ` +
					`the size field and clicking "Execute Operation".`,
				Expected: expectAllocate(128),
			},
			{
				Title: "Memory Access",
				Content: "Programs access memory locations to read or " +
					"modify data. Each access requires translating virtual " +
					"addresses to physical memory locations.",
				Task: `Access memory at address 64 by selecting "Access ` +
					`Memory" operation, entering "64", and clicking ` +
					`"Execute Operation".`,
				Expected: expectAccess(64),
			},
			{
				Title: "Memory Deallocation",
				Content: "When data is no longer needed, memory should be " +
					"deallocated to be reused by other processes.",
				Task: `Deallocate memory by selecting "Deallocate Memory" ` +
					`operation, entering the address shown, and clicking ` +
					`"Execute Operation".`,
				Expected: expectDeallocate(),
			},
			{
				Title: "Introduction Complete",
				Content: "Congratulations! You have completed the " +
					"introduction to memory management.",
				Task: `Click "Finish Tutorial" to return to the main interface.`,
			},
		},
	}
}

func fragmentationTutorial() Tutorial {
	return Tutorial{
		ID:          "fragmentation",
		Title:       "Memory Fragmentation",
		Description: "Learn about internal and external memory fragmentation",
		Steps: []Step{
			{
				Title: "Understanding Fragmentation",
				Content: "Fragmentation occurs when memory is allocated " +
					"and deallocated over time, leaving unused gaps.",
				Task: `Click "Next" to continue.`,
				Config: &StepConfig{
					MemorySize: 1024,
					PageSize:   128,
					Technique:  mem.TechniqueSegmentation,
					Algorithm:  mem.AlgorithmFIFO,
				},
			},
			{
				Title: "External Fragmentation",
				Content: "External fragmentation occurs when free memory " +
					"is split into many small blocks that are not contiguous.",
				Task: "Allocate 256 bytes of memory to see how memory " +
					"blocks are assigned.",
				Expected: expectAllocate(256),
			},
			{
				Title: "Creating Fragmentation",
				Content: "Let's create some fragmentation by allocating " +
					"and deallocating memory in a pattern.",
				Task:     "Allocate another 128 bytes of memory.",
				Expected: expectAllocate(128),
			},
			{
				Title: "Deallocating Memory",
				Content: "Now we'll deallocate the first block we " +
					`allocated, creating a "hole" in memory.`,
				Task: `Deallocate the first memory block by selecting ` +
					`"Deallocate Memory" and using the address shown.`,
				Expected: expectDeallocate(),
			},
			{
				Title: "Observing Fragmentation",
				Content: "Notice how the memory now has gaps. This is " +
					"external fragmentation.",
				Task: "Try to allocate 192 bytes and observe how the " +
					"memory is assigned.",
				Expected: expectAllocate(192),
			},
			{
				Title: "Internal Fragmentation",
				Content: "Internal fragmentation occurs when allocated " +
					"memory is larger than what is needed, wasting space " +
					"within allocated blocks.",
				Task: "Allocate 60 bytes and observe how a full " +
					"page/segment is allocated despite needing less.",
				Expected: expectAllocate(60),
			},
			{
				Title: "Fragmentation Complete",
				Content: "You've learned about both external and internal " +
					"fragmentation in memory systems.",
				Task: `Click "Finish Tutorial" to return to the main interface.`,
			},
		},
	}
}

func pageReplacementTutorial() Tutorial {
	return Tutorial{
		ID:          "page_replacement",
		Title:       "Page Replacement Algorithms",
		Description: "Compare different page replacement strategies",
		Steps: []Step{
			{
				Title: "Page Replacement",
				Content: "When memory is full, page replacement algorithms " +
					"decide which pages to remove to make space for new ones.",
				Task: `Click "Next" to learn about different algorithms.`,
				Config: &StepConfig{
					MemorySize: 512,
					PageSize:   64,
					Technique:  mem.TechniquePaging,
					Algorithm:  mem.AlgorithmFIFO,
				},
			},
			{
				Title: "First-In-First-Out (FIFO)",
				Content: "FIFO replaces the oldest page in memory, " +
					"regardless of how frequently it's used.",
				Task:     "Fill memory by allocating 512 bytes.",
				Expected: expectAllocate(512),
				Config:   &StepConfig{Algorithm: mem.AlgorithmFIFO},
			},
			{
				Title: "FIFO Page Fault",
				Content: "Now that memory is full, let's see how FIFO " +
					"handles a new allocation.",
				Task: "Allocate 128 more bytes and observe which pages " +
					"are replaced.",
				Expected: expectAllocate(128),
			},
			{
				Title: "Least Recently Used (LRU)",
				Content: "LRU replaces the page that hasn't been accessed " +
					"for the longest time.",
				Task: `Click "Reset Simulation" and then start a new ` +
					`simulation with LRU algorithm.`,
				Expected: &ExpectedOperation{Kind: KindReset},
				Config:   &StepConfig{Algorithm: mem.AlgorithmLRU},
			},
			{
				Title: "LRU Memory Access",
				Content: "LRU tracks page access history to make " +
					"replacement decisions.",
				Task: "Allocate 256 bytes of memory, then access the " +
					"first page at address 0.",
				Expected: expectAllocate(256),
			},
			{
				Title: "LRU Page Replacement",
				Content: "Now let's fill memory and see which pages LRU " +
					"chooses to replace.",
				Task: "Allocate 384 more bytes and observe the " +
					"replacement pattern.",
				Expected: expectAllocate(384),
			},
			{
				Title: "Algorithm Comparison",
				Content: "Different algorithms perform better in different " +
					"scenarios. The best choice depends on memory access " +
					"patterns.",
				Task: `Click "Finish Tutorial" to return to the main interface.`,
			},
		},
	}
}

func optimizationTutorial() Tutorial {
	return Tutorial{
		ID:          "optimization",
		Title:       "Memory Optimization Techniques",
		Description: "Learn practical techniques to optimize memory usage",
		Steps: []Step{
			{
				Title: "Memory Optimization",
				Content: "Memory optimization aims to reduce memory usage " +
					"while maintaining performance.",
				Task: `Click "Next" to continue.`,
				Config: &StepConfig{
					MemorySize: 1024,
					PageSize:   64,
					Technique:  mem.TechniquePaging,
					Algorithm:  mem.AlgorithmLRU,
				},
			},
			{
				Title: "Right-Sizing Allocations",
				Content: "One optimization technique is to allocate " +
					"exactly what you need, reducing internal fragmentation.",
				Task: "Allocate 60 bytes and notice the internal " +
					"fragmentation within the page.",
				Expected: expectAllocate(60),
			},
			{
				Title: "Memory Pooling",
				Content: "Memory pooling involves pre-allocating " +
					"fixed-size blocks for frequent allocations.",
				Task:     "Allocate four 64-byte blocks to simulate a memory pool.",
				Expected: expectAllocate(64),
			},
			{
				Title: "Locality of Reference",
				Content: "Programs with good locality of reference " +
					"(accessing nearby memory addresses) perform better.",
				Task: "Access memory addresses 0, 4, 8, and 12 in " +
					"sequence to demonstrate spatial locality.",
				Expected: expectAccess(0),
			},
			{
				Title: "Compaction",
				Content: "Memory compaction rearranges allocated blocks " +
					"to eliminate external fragmentation.",
				Task: "Allocate and deallocate memory to create " +
					"fragmentation, then observe the compaction process.",
				Expected: expectDeallocate(),
			},
			{
				Title: "Optimization Challenge",
				Content: "Now, try to allocate memory efficiently to " +
					"achieve at least a 75% utilization rate.",
				Task: "Allocate memory in an optimal pattern to reach " +
					"the target utilization.",
				Expected: &ExpectedOperation{Kind: mem.OpAllocate},
			},
			{
				Title: "Optimization Complete",
				Content: "Congratulations! You've learned several memory " +
					"optimization techniques.",
				Task: `Click "Finish Tutorial" to return to the main interface.`,
			},
		},
	}
}
