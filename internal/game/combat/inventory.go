package combat

import (
	"errors"

	"github.com/wfunc/rpg-game/internal/models"
)

var (
	ErrInventoryFull = errors.New("背包已满")
	ErrItemNotInBag  = errors.New("背包中没有该物品")
)

// Inventory 角色背包操作的内存封装
// 对槽位切片做增删改，持久化由调用方负责
type Inventory struct {
	Slots    []models.InventorySlot
	Capacity int
}

// NewInventory 封装角色的背包槽位
func NewInventory(slots []models.InventorySlot, capacity int) *Inventory {
	return &Inventory{Slots: slots, Capacity: capacity}
}

// IndexOf 查找物品所在槽位，找不到返回-1
func (inv *Inventory) IndexOf(itemID uint) int {
	for i := range inv.Slots {
		if inv.Slots[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

// Count 物品总数量
func (inv *Inventory) Count(itemID uint) int {
	total := 0
	for i := range inv.Slots {
		if inv.Slots[i].ItemID == itemID {
			total += inv.Slots[i].Quantity
		}
	}
	return total
}

// Add 添加物品，可堆叠物品优先并入已有槽位
func (inv *Inventory) Add(item *models.Item, quantity int) error {
	if item.Stackable {
		for i := range inv.Slots {
			if inv.Slots[i].ItemID != item.ID {
				continue
			}
			space := item.MaxStack - inv.Slots[i].Quantity
			if space <= 0 {
				continue
			}
			if quantity <= space {
				inv.Slots[i].Quantity += quantity
				return nil
			}
			inv.Slots[i].Quantity = item.MaxStack
			quantity -= space
		}
	}

	for quantity > 0 {
		if inv.Capacity > 0 && len(inv.Slots) >= inv.Capacity {
			return ErrInventoryFull
		}
		stack := quantity
		if item.Stackable && stack > item.MaxStack {
			stack = item.MaxStack
		} else if !item.Stackable {
			stack = 1
		}
		inv.Slots = append(inv.Slots, models.InventorySlot{
			SlotIndex: inv.nextSlotIndex(),
			ItemID:    item.ID,
			Quantity:  stack,
		})
		quantity -= stack
	}
	return nil
}

// AddOne 添加单个不堆叠物品（装备拆卸时使用）
func (inv *Inventory) AddOne(itemID uint) error {
	if inv.Capacity > 0 && len(inv.Slots) >= inv.Capacity {
		return ErrInventoryFull
	}
	inv.Slots = append(inv.Slots, models.InventorySlot{
		SlotIndex: inv.nextSlotIndex(),
		ItemID:    itemID,
		Quantity:  1,
	})
	return nil
}

// RemoveOne 扣减一个物品，数量归零时移除槽位
func (inv *Inventory) RemoveOne(itemID uint) error {
	index := inv.IndexOf(itemID)
	if index < 0 {
		return ErrItemNotInBag
	}

	inv.Slots[index].Quantity--
	if inv.Slots[index].Quantity <= 0 {
		inv.Slots = append(inv.Slots[:index], inv.Slots[index+1:]...)
	}
	return nil
}

func (inv *Inventory) nextSlotIndex() int {
	used := make(map[int]bool, len(inv.Slots))
	for i := range inv.Slots {
		used[inv.Slots[i].SlotIndex] = true
	}
	for i := 0; ; i++ {
		if !used[i] {
			return i
		}
	}
}
